package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/zerr"
)

// restoreLayer copies the cached dependency layer for the build's install key into the
// staging env dir. The layer is used only when its recorded input hash matches and its
// tree still hashes to the recorded output hash. A stale or damaged layer is a miss.
func (p *Pipeline) restoreLayer(b *build) (bool, error) {
	root := b.req.Project.Root
	info, err := p.store.Get(root, domain.BuildInfoKey(b.role(), domain.StageInstallDependencies))
	if err != nil {
		p.logger.Warn(fmt.Sprintf("%s: ignoring unreadable layer record: %v", b.role(), err))
		return false, nil
	}
	if info == nil || info.InputHash != b.installKey {
		return false, nil
	}

	layer := b.req.Project.Path(domain.LayerPath(b.role(), b.installKey))
	got, err := p.hasher.HashTree(layer)
	if err != nil || got != info.OutputHash {
		p.logger.Warn(fmt.Sprintf("%s: cached dependency layer failed verification, reinstalling", b.role()))
		_ = os.RemoveAll(layer)
		return false, nil
	}

	if err := p.copier.CopyTree(layer, b.envPath()); err != nil {
		return false, err
	}
	return true, nil
}

// saveLayer stores the freshly installed environment as the role's only cached layer
// and records its output hash. Failures are logged; the build itself has succeeded.
func (p *Pipeline) saveLayer(b *build) {
	if err := p.writeLayer(b); err != nil {
		p.logger.Warn(fmt.Sprintf("%s: dependency layer not cached: %v", b.role(), err))
	}
}

func (p *Pipeline) writeLayer(b *build) error {
	roleDir := b.req.Project.Path(filepath.Join(domain.DefaultLayerCachePath(), string(b.role())))
	tmp := filepath.Join(roleDir, ".tmp-"+b.id)
	layer := filepath.Join(roleDir, b.installKey)

	if err := os.MkdirAll(roleDir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCopyFailed, "cannot create layer cache"), "reason", err.Error())
	}
	if err := p.copier.CopyTree(b.envPath(), tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}
	hash, err := p.hasher.HashTree(tmp)
	if err != nil {
		_ = os.RemoveAll(tmp)
		return err
	}

	entries, err := os.ReadDir(roleDir)
	if err != nil {
		_ = os.RemoveAll(tmp)
		return zerr.With(zerr.Wrap(domain.ErrCopyFailed, "cannot list layer cache"), "reason", err.Error())
	}
	for _, e := range entries {
		if name := e.Name(); name != filepath.Base(tmp) {
			_ = os.RemoveAll(filepath.Join(roleDir, name))
		}
	}
	if err := os.Rename(tmp, layer); err != nil {
		_ = os.RemoveAll(tmp)
		return zerr.With(zerr.Wrap(domain.ErrCopyFailed, "cannot commit layer"), "reason", err.Error())
	}

	return p.store.Put(b.req.Project.Root, domain.BuildInfo{
		Image:      b.role(),
		Stage:      domain.StageInstallDependencies,
		InputHash:  b.installKey,
		OutputHash: hash,
		BuildID:    b.id,
		Timestamp:  p.now().UTC(),
	})
}
