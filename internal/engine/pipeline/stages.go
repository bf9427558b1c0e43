package pipeline

import (
	"context"
	"errors"
	"os"
	"slices"

	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/zerr"
)

// stageOutput is what a stage action reports back.
type stageOutput struct {
	key    string
	cached bool
}

type stage struct {
	name domain.StageName
	pre  func(ctx context.Context, b *build) error
	run  func(ctx context.Context, b *build) (stageOutput, error)
	post func(ctx context.Context, b *build) error
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{
			name: domain.StageBaseRuntime,
			pre:  p.preBaseRuntime,
			run:  p.runBaseRuntime,
			post: p.postBaseRuntime,
		},
		{
			name: domain.StageInstallDependencies,
			pre:  p.preInstall,
			run:  p.runInstall,
			post: p.postInstall,
		},
		{
			name: domain.StageCopySource,
			pre:  p.preCopySource,
			run:  p.runCopySource,
			post: p.postCopySource,
		},
		{
			name: domain.StageDefineEntryPoint,
			pre:  p.preDefineEntryPoint,
			run:  p.runDefineEntryPoint,
			post: p.postDefineEntryPoint,
		},
		{
			name: domain.StageExport,
			pre:  p.preExport,
			run:  p.runExport,
			post: p.postExport,
		},
	}
}

func (p *Pipeline) preBaseRuntime(_ context.Context, b *build) error {
	if b.req.Project.Runtime == "" {
		return precondition("runtime reference is empty")
	}
	return nil
}

func (p *Pipeline) runBaseRuntime(_ context.Context, b *build) (stageOutput, error) {
	if err := os.MkdirAll(b.req.Project.Path(domain.DefaultStagingPath()), domain.DirPerm); err != nil {
		return stageOutput{}, zerr.With(zerr.Wrap(domain.ErrBuildFailed, "cannot create staging area"), "reason", err.Error())
	}
	if err := os.Mkdir(b.staging, domain.DirPerm); err != nil {
		return stageOutput{}, zerr.With(zerr.Wrap(domain.ErrBuildFailed, "cannot create staging dir"), "reason", err.Error())
	}
	return stageOutput{key: p.hasher.HashKey("runtime", b.req.Project.Runtime)}, nil
}

func (p *Pipeline) postBaseRuntime(_ context.Context, b *build) error {
	if !isDir(b.staging) {
		return postcondition("staging dir %s does not exist", b.staging)
	}
	return nil
}

func (p *Pipeline) preInstall(_ context.Context, b *build) error {
	if err := domain.CheckConsistency(b.req.Manifest, b.req.Lockfile, b.req.Project.ConsistencyOptions()); err != nil {
		return err
	}
	if exists(b.appPath()) {
		return precondition("application source was copied before dependencies were installed")
	}
	return nil
}

// installKey covers exactly the inputs of the dependency environment. Source changes do
// not touch it.
func (p *Pipeline) installKey(b *build) string {
	parts := []string{"install", b.req.Project.Runtime, string(b.role()), "manifest"}
	parts = append(parts, b.req.Manifest.Canonical()...)
	parts = append(parts, "lockfile")
	parts = append(parts, b.req.Lockfile.Canonical()...)
	return p.hasher.HashKey(parts...)
}

func (p *Pipeline) runInstall(ctx context.Context, b *build) (stageOutput, error) {
	b.installKey = p.installKey(b)
	out := stageOutput{key: b.installKey}

	if !b.req.NoCache {
		hit, err := p.restoreLayer(b)
		if err != nil {
			return out, err
		}
		if hit {
			out.cached = true
			return out, nil
		}
	}

	if _, err := b.req.Installer.Install(ctx, b.req.Manifest, b.req.Lockfile, b.envPath()); err != nil {
		return out, err
	}
	p.saveLayer(b)
	return out, nil
}

func (p *Pipeline) postInstall(_ context.Context, b *build) error {
	env, err := b.req.Installer.ReadEnvironment(b.envPath())
	if err != nil {
		return err
	}
	if err := env.MatchLockfile(b.req.Lockfile); err != nil {
		return err
	}
	b.env = env
	return nil
}

func (p *Pipeline) preCopySource(_ context.Context, b *build) error {
	if b.env == nil || !isDir(b.envPath()) {
		return precondition("dependency environment is not installed")
	}
	if !isDir(b.req.Spec.Source) {
		return zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "application source tree is missing"), "path", b.req.Spec.Source)
	}
	return nil
}

func (p *Pipeline) runCopySource(_ context.Context, b *build) (stageOutput, error) {
	hash, err := p.hasher.HashTree(b.req.Spec.Source)
	if err != nil {
		return stageOutput{}, err
	}
	if err := p.copier.CopyTree(b.req.Spec.Source, b.appPath()); err != nil {
		return stageOutput{}, err
	}
	b.sourceHash = hash
	return stageOutput{key: hash}, nil
}

func (p *Pipeline) postCopySource(_ context.Context, b *build) error {
	got, err := p.hasher.HashTree(b.appPath())
	if err != nil {
		return err
	}
	if got != b.sourceHash {
		return postcondition("copied tree hash %s does not match source hash %s", got, b.sourceHash)
	}
	return nil
}

func (p *Pipeline) preDefineEntryPoint(_ context.Context, b *build) error {
	if !isDir(b.appPath()) {
		return precondition("application source tree is not in the image")
	}
	return nil
}

func (p *Pipeline) runDefineEntryPoint(_ context.Context, b *build) (stageOutput, error) {
	img := domain.ServiceImage{
		ID:         b.id,
		Role:       b.role(),
		Runtime:    b.req.Project.Runtime,
		EntryPoint: domain.NewEntryPoint(b.req.Spec),
		InstallKey: b.installKey,
		SourceHash: b.sourceHash,
		CreatedAt:  p.now().UTC(),
		Root:       b.staging,
	}
	if err := p.images.WriteConfig(b.staging, img); err != nil {
		return stageOutput{}, err
	}
	b.image = &img
	return stageOutput{key: p.hasher.HashKey("entrypoint", img.EntryPoint.Address(), img.InstallKey, img.SourceHash)}, nil
}

func (p *Pipeline) postDefineEntryPoint(_ context.Context, b *build) error {
	got, err := p.images.ReadConfig(b.staging)
	if err != nil {
		return err
	}
	if !sameEntryPoint(got.EntryPoint, b.image.EntryPoint) || got.ID != b.image.ID {
		return postcondition("image config does not round-trip")
	}
	return nil
}

func (p *Pipeline) preExport(_ context.Context, b *build) error {
	for _, r := range b.results {
		if r.Status != domain.VertexStatusCompleted && r.Status != domain.VertexStatusCached {
			return precondition("stage %s did not succeed", r.Stage)
		}
	}
	if b.image == nil {
		return precondition("image has no entry point")
	}
	return nil
}

func (p *Pipeline) runExport(ctx context.Context, b *build) (stageOutput, error) {
	out := stageOutput{key: b.image.ID}
	root := b.req.Project.Root

	var archive string
	if b.req.ExportOCI {
		archive = b.req.Project.Path(domain.OCIArchivePath(b.role()))
		digest, err := p.exporter.Export(ctx, *b.image, archive)
		if err != nil {
			return out, err
		}
		out.key = digest
	}

	img, err := p.images.Commit(root, b.staging, b.role())
	if err != nil {
		if archive != "" {
			_ = os.Remove(archive)
		}
		return out, err
	}
	b.committed = true
	b.image = img
	return out, nil
}

func (p *Pipeline) postExport(_ context.Context, b *build) error {
	img, err := p.images.Load(b.req.Project.Root, b.role())
	if err != nil {
		return err
	}
	if img.ID != b.image.ID {
		return postcondition("committed image %s is not the one just built (%s)", img.ID, b.image.ID)
	}
	return nil
}

func sameEntryPoint(a, b domain.EntryPoint) bool {
	return a.Role == b.Role &&
		a.Host == b.Host &&
		a.Port == b.Port &&
		a.Headless == b.Headless &&
		slices.Equal(a.Command, b.Command)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, os.ErrNotExist)
}
