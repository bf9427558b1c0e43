// Package app implements the application layer for tandem.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/tandem/internal/adapters/requirements" //nolint:depguard // Lockfile rendering for verify
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/tandem/internal/core/ports"
	"go.trai.ch/tandem/internal/engine/pipeline"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ImageBuilder runs the build pipeline for one image.
type ImageBuilder interface {
	Run(ctx context.Context, req pipeline.Request) (*domain.BuildResult, error)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	reader       ports.RequirementsReader
	installers   ports.InstallerFactory
	builder      ImageBuilder
	images       ports.ImageStore
	hasher       ports.Hasher
	launcher     ports.Launcher
	watcher      ports.Watcher
	logger       ports.Logger

	workDir string
	out     io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	reader ports.RequirementsReader,
	installers ports.InstallerFactory,
	builder ImageBuilder,
	images ports.ImageStore,
	hasher ports.Hasher,
	launcher ports.Launcher,
	watcher ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		reader:       reader,
		installers:   installers,
		builder:      builder,
		images:       images,
		hasher:       hasher,
		launcher:     launcher,
		watcher:      watcher,
		logger:       log,
		workDir:      ".",
		out:          os.Stdout,
	}
}

// WithWorkDir sets the directory tandem.yaml is discovered from.
func (a *App) WithWorkDir(dir string) *App {
	if dir != "" {
		a.workDir = dir
	}
	return a
}

// WithOutput sets where command results are printed.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// BuildOptions configures Build.
type BuildOptions struct {
	// NoCache reinstalls dependencies even when a verified layer exists.
	NoCache bool
	// Export also writes each image as an OCI archive.
	Export bool
}

// inputs are the values shared read-only by every image build of one invocation.
type inputs struct {
	project   *domain.Project
	manifest  domain.Manifest
	lockfile  domain.Lockfile
	installer ports.Installer
}

func (a *App) loadProject() (*domain.Project, error) {
	project, err := a.configLoader.Load(a.workDir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return project, nil
}

func (a *App) loadInputs() (*inputs, error) {
	project, err := a.loadProject()
	if err != nil {
		return nil, err
	}
	manifest, err := a.reader.ReadManifest(project.ManifestPath)
	if err != nil {
		return nil, err
	}
	lockfile, err := a.reader.ReadLockfile(project.LockfilePath)
	if err != nil {
		return nil, err
	}
	return &inputs{project: project, manifest: manifest, lockfile: lockfile}, nil
}

// Build builds the images for roles, or every configured image when roles is empty.
// Manifest and Lockfile are read once and handed to each pipeline unchanged. The
// pipelines run concurrently and a failure in one never cancels the other.
func (a *App) Build(ctx context.Context, roles []domain.Role, opts BuildOptions) error {
	in, err := a.loadInputs()
	if err != nil {
		return err
	}
	specs, err := selectImages(in.project, roles)
	if err != nil {
		return err
	}
	in.installer, err = a.installers.ForProject(in.project)
	if err != nil {
		return zerr.Wrap(err, "failed to open package index")
	}

	results := make([]*domain.BuildResult, len(specs))
	errs := make([]error, len(specs))

	var g errgroup.Group
	for i, spec := range specs {
		g.Go(func() error {
			results[i], errs[i] = a.builder.Run(ctx, pipeline.Request{
				Project:   in.project,
				Spec:      spec,
				Manifest:  in.manifest,
				Lockfile:  in.lockfile,
				Installer: in.installer,
				NoCache:   opts.NoCache,
				ExportOCI: opts.Export,
			})
			return nil
		})
	}
	_ = g.Wait()

	for i, res := range results {
		if errs[i] == nil && res != nil && res.Image != nil {
			a.logger.Info(fmt.Sprintf("%s image %s ready (%s)", res.Role, shortID(res.Image.ID), res.Image.EntryPoint.Address()))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return errors.Join(domain.ErrBuildFailed, err)
	}
	return nil
}

// ServeOptions configures Serve.
type ServeOptions struct {
	// Headless overrides the frontend's recorded headless flag when set.
	Headless *bool
}

// Serve starts the entry point of a built image and blocks until ctx is done. The image,
// its dependency environment and its application tree are checked before anything binds.
func (a *App) Serve(ctx context.Context, role domain.Role, opts ServeOptions) error {
	project, err := a.loadProject()
	if err != nil {
		return err
	}
	if _, err := project.Image(role); err != nil {
		return err
	}

	img, err := a.images.Load(project.Root, role)
	if err != nil {
		return err
	}
	env, err := a.installers.ReadEnvironment(img.EnvPath())
	if err != nil {
		return zerr.With(zerr.Wrap(err, "image has no usable dependency environment"), "image", string(role))
	}
	if err := a.checkAppTree(img); err != nil {
		return err
	}

	if opts.Headless != nil && role == domain.RoleFrontend {
		img.EntryPoint.Headless = *opts.Headless
	}

	a.logger.Info(fmt.Sprintf("starting %s image %s on %s", role, shortID(img.ID), img.EntryPoint.Address()))
	return a.launcher.Launch(ctx, *img, *env)
}

func (a *App) checkAppTree(img *domain.ServiceImage) error {
	info, err := os.Stat(img.AppPath())
	if err != nil || !info.IsDir() {
		return zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "image has no application source tree"), "path", img.AppPath())
	}
	got, err := a.hasher.HashTree(img.AppPath())
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "application source tree is unreadable"), "reason", err.Error())
	}
	if got != img.SourceHash {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "application source tree was modified after build"),
			"expected", img.SourceHash), "found", got)
	}
	return nil
}

// Verify checks the Manifest against the Lockfile without installing anything and prints
// the locked set.
func (a *App) Verify(_ context.Context) error {
	in, err := a.loadInputs()
	if err != nil {
		return err
	}
	if err := domain.CheckConsistency(in.manifest, in.lockfile, in.project.ConsistencyOptions()); err != nil {
		return err
	}
	if err := requirements.RenderLockfile(a.out, in.lockfile); err != nil {
		return zerr.Wrap(err, "failed to print lockfile")
	}
	a.logger.Info(fmt.Sprintf("%d requirements satisfied by %d locked packages", in.manifest.Len(), in.lockfile.Len()))
	return nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// Images removes built images, in-progress builds and the build info store.
	Images bool
	// Cache removes downloaded artifacts and cached dependency layers.
	Cache bool
}

// Clean removes build outputs and caches based on the provided options.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	root, err := a.configLoader.DiscoverRoot(a.workDir)
	if err != nil {
		return zerr.Wrap(err, "failed to locate project")
	}

	var errs error

	remove := func(rel string, name string) {
		path := filepath.Join(root, rel)
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	if options.Images {
		remove(domain.DefaultImagesPath(), "images")
		remove(domain.DefaultStagingPath(), "staging area")
		remove(domain.DefaultStorePath(), "build info store")
	}

	if options.Cache {
		remove(domain.DefaultArtifactCachePath(), "artifact cache")
		remove(domain.DefaultLayerCachePath(), "dependency layer cache")
	}

	return errs
}

// selectImages returns the specs for roles in build order. An empty roles selects every
// configured image.
func selectImages(project *domain.Project, roles []domain.Role) ([]domain.ImageSpec, error) {
	if len(roles) == 0 {
		for _, role := range domain.Roles() {
			if _, ok := project.Images[role]; ok {
				roles = append(roles, role)
			}
		}
	}

	specs := make([]domain.ImageSpec, 0, len(roles))
	seen := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		if seen[role] {
			continue
		}
		seen[role] = true
		spec, err := project.Image(role)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
