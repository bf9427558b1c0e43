package installer

import (
	"archive/tar"
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/zerr"
)

// openArchive returns a tar reader over the decompressed artifact at path.
// The returned closer releases both the file and the decompressor.
func openArchive(path string) (*tar.Reader, func(), error) {
	//nolint:gosec // Path is inside the artifact cache
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrFileOpenFailed, "cannot open artifact"),
			"path", path), "reason", err.Error())
	}

	var (
		r       io.Reader
		release = func() { _ = f.Close() }
	)
	switch {
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		gz, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			release()
			return nil, nil, invalidArchive(path, err)
		}
		r = gz
		release = func() { _ = gz.Close(); _ = f.Close() }
	case strings.HasSuffix(path, ".tar.zst"):
		dec, err := zstd.NewReader(bufio.NewReader(f))
		if err != nil {
			release()
			return nil, nil, invalidArchive(path, err)
		}
		r = dec
		release = func() { dec.Close(); _ = f.Close() }
	default:
		release()
		return nil, nil, zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "unsupported archive format"), "path", path)
	}

	return tar.NewReader(r), release, nil
}

// Metadata is the identity an artifact declares in its top-level METADATA file.
type Metadata struct {
	Name    string
	Version string
}

// readMetadata scans the archive for its top-level METADATA file.
func readMetadata(path string) (Metadata, error) {
	tr, release, err := openArchive(path)
	if err != nil {
		return Metadata{}, err
	}
	defer release()

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return Metadata{}, zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "archive has no METADATA"), "path", path)
		}
		if err != nil {
			return Metadata{}, invalidArchive(path, err)
		}
		if filepath.Clean(hdr.Name) == domain.ArtifactMetadataFile && hdr.Typeflag == tar.TypeReg {
			return parseMetadata(tr), nil
		}
	}
}

func parseMetadata(r io.Reader) Metadata {
	var md Metadata
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			md.Name = strings.TrimSpace(value)
		case "version":
			md.Version = strings.TrimSpace(value)
		}
	}
	return md
}

// extract unpacks the archive at path into dir. Every write goes through an os.Root on
// dir, so entries reaching outside it through "..", absolute names or symlink chains are
// rejected.
func extract(path, dir string) error {
	tr, release, err := openArchive(path)
	if err != nil {
		return err
	}
	defer release()

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCopyFailed, err.Error()), "path", dir)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCopyFailed, err.Error()), "path", dir)
	}
	defer root.Close() //nolint:errcheck // Directory handle

	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return invalidArchive(path, err)
		}

		name, err := cleanEntry(hdr.Name)
		if err != nil {
			return zerr.With(err, "artifact", filepath.Base(path))
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := root.MkdirAll(name, domain.DirPerm); err != nil {
				return entryFailed(hdr.Name, err)
			}
		case tar.TypeReg:
			if err := writeEntry(root, tr, name, hdr.FileInfo().Mode().Perm()); err != nil {
				return entryFailed(hdr.Name, err)
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(hdr.Linkname) {
				return zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "symlink escapes package directory"),
					"entry", hdr.Name), "target", hdr.Linkname)
			}
			if _, err := cleanEntry(filepath.Join(filepath.Dir(name), hdr.Linkname)); err != nil {
				return zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "symlink escapes package directory"),
					"entry", hdr.Name), "target", hdr.Linkname)
			}
			if err := root.MkdirAll(filepath.Dir(name), domain.DirPerm); err != nil {
				return entryFailed(hdr.Name, err)
			}
			if err := root.Symlink(hdr.Linkname, name); err != nil {
				return entryFailed(hdr.Name, err)
			}
		default:
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "unsupported archive entry"),
				"entry", hdr.Name), "type", string(hdr.Typeflag))
		}
	}
}

func writeEntry(root *os.Root, r io.Reader, name string, perm os.FileMode) error {
	if err := root.MkdirAll(filepath.Dir(name), domain.DirPerm); err != nil {
		return err
	}
	if perm == 0 {
		perm = domain.FilePerm
	}

	out, err := root.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	//nolint:gosec // Artifact size is bounded by the verified download
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// entryFailed reports an entry the package directory root refused or could not write.
func entryFailed(entry string, err error) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "cannot write archive entry inside package directory"),
		"entry", entry), "reason", err.Error())
}

// cleanEntry returns name cleaned and relative, rejecting absolute names and names that
// climb out with "..".
func cleanEntry(name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "absolute path in archive"), "entry", name)
	}
	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "path escapes package directory"), "entry", name)
	}
	return clean, nil
}

func invalidArchive(path string, err error) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrArtifactInvalid, "corrupt archive"),
		"path", path), "reason", err.Error())
}
