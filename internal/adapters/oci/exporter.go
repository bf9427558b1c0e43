// Package oci exports Service Images as OCI image tarballs.
package oci

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/empty"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
	"github.com/klauspost/compress/gzip"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
)

// ImageRoot is where an image's directory is placed inside the exported filesystem.
const ImageRoot = "/srv"

// Labels set on every exported image.
const (
	LabelBaseName = "org.opencontainers.image.base.name"
	LabelRole     = "ch.trai.tandem.role"
	LabelImageID  = "ch.trai.tandem.image-id"
	LabelCommand  = "ch.trai.tandem.command"
)

var _ ports.ImageExporter = (*Exporter)(nil)

// Exporter implements ports.ImageExporter with go-containerregistry.
type Exporter struct {
	// Repository prefixes the tag written into the archive.
	Repository string
}

// NewExporter creates a new Exporter tagging images as tandem/<role>:latest.
func NewExporter() *Exporter {
	return &Exporter{Repository: "tandem"}
}

// Export writes img as a single-layer OCI tarball at dest and returns its digest.
// The layer holds the image directory under /srv/<role>. The runtime reference is
// recorded as the base image label; the base layers themselves are not pulled.
//
// The archive is a filesystem export, not a runnable container: it carries neither the
// tandem binary nor an interpreter, so no Entrypoint is set. The entry command is kept
// as the LabelCommand label for tooling that assembles a runnable image on top.
func (e *Exporter) Export(ctx context.Context, img domain.ServiceImage, dest string) (string, error) {
	layerFile, err := os.CreateTemp(filepath.Dir(dest), ".layer-*.tar.gz")
	if err != nil {
		return "", exportFailed(err, dest)
	}
	layerPath := layerFile.Name()
	defer func() { _ = os.Remove(layerPath) }()

	prefix := path.Join(ImageRoot, string(img.Role))[1:]
	if err := writeLayer(ctx, layerFile, img.Root, prefix); err != nil {
		_ = layerFile.Close()
		return "", err
	}
	if err := layerFile.Close(); err != nil {
		return "", exportFailed(err, dest)
	}

	layer, err := tarball.LayerFromFile(layerPath)
	if err != nil {
		return "", exportFailed(err, dest)
	}

	image, err := mutate.AppendLayers(empty.Image, layer)
	if err != nil {
		return "", exportFailed(err, dest)
	}
	cfg, err := image.ConfigFile()
	if err != nil {
		return "", exportFailed(err, dest)
	}
	cfg = cfg.DeepCopy()
	cfg.OS = "linux"
	cfg.Architecture = runtime.GOARCH
	cfg.Created = v1.Time{Time: img.CreatedAt}
	cfg.Config = imageConfig(img)
	if image, err = mutate.ConfigFile(image, cfg); err != nil {
		return "", exportFailed(err, dest)
	}

	ref, err := name.NewTag(e.Repository+"/"+string(img.Role)+":latest", name.WithDefaultRegistry(""))
	if err != nil {
		return "", exportFailed(err, dest)
	}
	if err := tarball.WriteToFile(dest, ref, image); err != nil {
		return "", exportFailed(err, dest)
	}

	digest, err := image.Digest()
	if err != nil {
		return "", exportFailed(err, dest)
	}
	return digest.String(), nil
}

func imageConfig(img domain.ServiceImage) v1.Config {
	root := path.Join(ImageRoot, string(img.Role))
	return v1.Config{
		WorkingDir: path.Join(root, domain.AppDirName),
		Env: []string{
			"TANDEM_ROLE=" + string(img.Role),
			"TANDEM_IMAGE=" + root,
			"PYTHONPATH=" + path.Join(root, domain.EnvDirName, domain.PackagesDirName),
		},
		ExposedPorts: map[string]struct{}{
			strconv.Itoa(img.EntryPoint.Port) + "/tcp": {},
		},
		Labels: map[string]string{
			LabelBaseName: img.Runtime,
			LabelRole:     string(img.Role),
			LabelImageID:  img.ID,
			LabelCommand:  strings.Join(img.EntryPoint.Command, " "),
		},
	}
}

// writeLayer writes a gzip compressed tar of dir with every entry under prefix.
// Timestamps and ownership are zeroed so equal trees produce equal layers.
func writeLayer(ctx context.Context, w io.Writer, dir, prefix string) error {
	gz := gzip.NewWriter(w)
	tw := tar.NewWriter(gz)

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		link := ""
		if d.Type()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(p); err != nil {
				return err
			}
		}
		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = path.Join(prefix, filepath.ToSlash(rel))
		if d.IsDir() {
			hdr.Name += "/"
		}
		hdr.ModTime = time.Unix(0, 0)
		hdr.Uid, hdr.Gid, hdr.Uname, hdr.Gname = 0, 0, "", ""
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}
		//nolint:gosec // Path comes from walking the image directory
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, f)
		_ = f.Close()
		return err
	})
	if err != nil {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrExportFailed, "cannot write image layer"),
			"path", dir), "reason", err.Error())
	}

	if err := tw.Close(); err != nil {
		return exportFailed(err, dir)
	}
	if err := gz.Close(); err != nil {
		return exportFailed(err, dir)
	}
	return nil
}

func exportFailed(err error, dest string) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrExportFailed, "oci export"), "path", dest), "reason", err.Error())
}
