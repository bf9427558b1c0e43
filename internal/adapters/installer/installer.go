// Package installer implements the Installer port with frozen, lockfile-exact semantics.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// fetchAttempts bounds how often an artifact is obtained before verification is final.
const fetchAttempts = 2

var _ ports.Installer = (*Installer)(nil)

// Options configures an Installer.
type Options struct {
	// CacheDir is the artifact cache directory.
	CacheDir string
	// Runtime is recorded in the receipt.
	Runtime string
	// Consistency holds the checks applied before anything is fetched.
	Consistency domain.ConsistencyOptions
	// Concurrency bounds parallel fetches. Zero means runtime.NumCPU().
	Concurrency int
}

// Installer materializes Dependency Environments from a package index.
type Installer struct {
	source ports.ArtifactSource
	cache  artifactCache
	logger ports.Logger
	opts   Options
}

// New creates an Installer fetching from source.
func New(source ports.ArtifactSource, logger ports.Logger, opts Options) *Installer {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	return &Installer{
		source: source,
		cache:  artifactCache{dir: filepath.Clean(opts.CacheDir)},
		logger: logger,
		opts:   opts,
	}
}

// Install checks m against l and installs exactly l's package set into dest.
func (i *Installer) Install(
	ctx context.Context, m domain.Manifest, l domain.Lockfile, dest string,
) (*domain.DependencyEnvironment, error) {
	if err := domain.CheckConsistency(m, l, i.opts.Consistency); err != nil {
		return nil, err
	}

	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCopyFailed, "cannot create environment parent"), "reason", err.Error())
	}
	staging := filepath.Join(parent, ".install-"+uuid.NewString())
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(staging)
		}
	}()
	if err := os.Mkdir(staging, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCopyFailed, "cannot create staging directory"), "reason", err.Error())
	}

	pkgs := l.Packages()
	installed := make([]domain.InstalledPackage, len(pkgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.opts.Concurrency)
	for idx, pkg := range pkgs {
		g.Go(func() error {
			ip, err := i.installOne(gctx, pkg, staging)
			if err != nil {
				return err
			}
			installed[idx] = ip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(installed, func(a, b domain.InstalledPackage) int {
		return strings.Compare(a.Name, b.Name)
	})
	if err := writeReceipt(staging, domain.Receipt{Runtime: i.opts.Runtime, Packages: installed}); err != nil {
		return nil, err
	}

	env := &domain.DependencyEnvironment{Root: dest, Runtime: i.opts.Runtime, Packages: installed}
	if err := env.MatchLockfile(l); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.RemoveAll(dest); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCopyFailed, "cannot replace environment"), "reason", err.Error())
	}
	if err := os.Rename(staging, dest); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCopyFailed, "cannot commit environment"), "reason", err.Error())
	}
	committed = true

	return env, nil
}

func (i *Installer) installOne(ctx context.Context, pkg domain.PinnedPackage, staging string) (domain.InstalledPackage, error) {
	path, digest, err := i.obtain(ctx, pkg)
	if err != nil {
		return domain.InstalledPackage{}, err
	}

	rel := filepath.Join(domain.PackagesDirName, pkg.Name)
	if err := extract(path, filepath.Join(staging, rel)); err != nil {
		return domain.InstalledPackage{}, zerr.With(err, "package", pkg.String())
	}

	note(ctx, domain.LogLevelInfo, fmt.Sprintf("installed %s", pkg))
	return domain.InstalledPackage{
		Name:    pkg.Name,
		Version: pkg.Version.String(),
		Digest:  digest.String(),
		Path:    filepath.ToSlash(rel),
	}, nil
}

// obtain returns a verified artifact for pkg. The cache is never trusted: an entry that
// fails verification is evicted and fetched again, once.
func (i *Installer) obtain(ctx context.Context, pkg domain.PinnedPackage) (string, domain.Digest, error) {
	var lastErr error
	for attempt := range fetchAttempts {
		path, cached := i.cache.lookup(pkg)
		if !cached {
			var err error
			if path, err = i.cache.fill(ctx, i.source, pkg); err != nil {
				return "", domain.Digest{}, err
			}
		}

		digest, err := verifyArtifact(path, pkg)
		if err == nil {
			if cached {
				note(ctx, domain.LogLevelInfo, fmt.Sprintf("reused cached %s", pkg))
			}
			return path, digest, nil
		}
		if !errors.Is(err, domain.ErrDigestMismatch) && !errors.Is(err, domain.ErrArtifactInvalid) {
			return "", domain.Digest{}, err
		}

		lastErr = err
		i.cache.evict(path)
		if attempt+1 < fetchAttempts {
			msg := fmt.Sprintf("artifact for %s failed verification, fetching it again", pkg)
			if !note(ctx, domain.LogLevelWarn, msg) {
				i.logger.Warn(msg)
			}
		}
	}

	return "", domain.Digest{}, zerr.With(zerr.With(
		zerr.Wrap(domain.ErrResolution, "artifact does not match lockfile"),
		"package", pkg.String()), "reason", lastErr.Error())
}

// ReadEnvironment loads the environment at dir from its receipt and checks that every
// recorded package directory is present.
func (i *Installer) ReadEnvironment(dir string) (*domain.DependencyEnvironment, error) {
	return readEnvironment(dir)
}

func readEnvironment(dir string) (*domain.DependencyEnvironment, error) {
	receipt, err := readReceipt(dir)
	if err != nil {
		return nil, err
	}

	for _, p := range receipt.Packages {
		path := filepath.Join(dir, filepath.FromSlash(p.Path))
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "installed package is missing"),
					"package", p.Name), "path", path)
			}
			return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "installed package is unreadable"),
				"path", path), "reason", err.Error())
		}
	}

	return &domain.DependencyEnvironment{Root: dir, Runtime: receipt.Runtime, Packages: receipt.Packages}, nil
}

// note records msg on the stage vertex carried by ctx and reports whether there was one.
func note(ctx context.Context, level domain.LogLevel, msg string) bool {
	v, ok := ports.VertexFromContext(ctx)
	if ok {
		v.Log(level, msg)
	}
	return ok
}
