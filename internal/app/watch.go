package app

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/tandem/internal/adapters/watcher" //nolint:depguard // Debouncer is shared with the adapter
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/zerr"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	Build BuildOptions
	// Debounce is the quiet period before a rebuild. Zero means the watcher default.
	Debounce time.Duration
}

// rebuildQueue merges the roles of every change batch that arrives while a build runs.
type rebuildQueue struct {
	mu      sync.Mutex
	pending map[domain.Role]bool
	ready   chan struct{}
}

func newRebuildQueue() *rebuildQueue {
	return &rebuildQueue{pending: make(map[domain.Role]bool), ready: make(chan struct{}, 1)}
}

func (q *rebuildQueue) push(roles []domain.Role) {
	if len(roles) == 0 {
		return
	}
	q.mu.Lock()
	for _, r := range roles {
		q.pending[r] = true
	}
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *rebuildQueue) take() []domain.Role {
	q.mu.Lock()
	defer q.mu.Unlock()
	var roles []domain.Role
	for _, r := range domain.Roles() {
		if q.pending[r] {
			roles = append(roles, r)
		}
	}
	clear(q.pending)
	return roles
}

// Watch builds roles, then rebuilds the affected images whenever their source tree, the
// Manifest or the Lockfile changes. Build failures are logged and watching continues. It
// returns nil when ctx is done.
func (a *App) Watch(ctx context.Context, roles []domain.Role, opts WatchOptions) error {
	project, err := a.loadProject()
	if err != nil {
		return err
	}
	specs, err := selectImages(project, roles)
	if err != nil {
		return err
	}
	roles = roles[:0:0]
	for _, spec := range specs {
		roles = append(roles, spec.Role)
	}

	if err := a.Build(ctx, roles, opts.Build); err != nil {
		a.logger.Error(err)
	}

	window := opts.Debounce
	if window <= 0 {
		window = watcher.DefaultDebounceWindow
	}

	queue := newRebuildQueue()
	debouncer := watcher.NewDebouncer(window, func(paths []string) {
		queue.push(affectedRoles(project, specs, paths))
	})
	defer debouncer.Stop()

	if err := a.watcher.Start(ctx, watchDirs(project, specs)...); err != nil {
		return zerr.Wrap(err, "failed to start watching sources")
	}
	defer func() { _ = a.watcher.Stop() }()

	go func() {
		for ev := range a.watcher.Events() {
			debouncer.Add(ev.Path)
		}
	}()

	a.logger.Info(fmt.Sprintf("watching %s for changes", joinRoles(roles)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-queue.ready:
			changed := queue.take()
			if len(changed) == 0 {
				continue
			}
			a.logger.Info(fmt.Sprintf("change detected, rebuilding %s", joinRoles(changed)))
			if err := a.Build(ctx, changed, opts.Build); err != nil && ctx.Err() == nil {
				a.logger.Error(err)
			}
		}
	}
}

// watchDirs returns each image's source dir and the dirs holding the Manifest and
// Lockfile, without duplicates or dirs nested in another.
func watchDirs(project *domain.Project, specs []domain.ImageSpec) []string {
	dirs := []string{filepath.Dir(project.ManifestPath), filepath.Dir(project.LockfilePath)}
	for _, spec := range specs {
		dirs = append(dirs, spec.Source)
	}
	slices.Sort(dirs)

	out := dirs[:0]
	for _, d := range dirs {
		if len(out) > 0 && within(out[len(out)-1], d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// affectedRoles maps changed paths onto the images that must be rebuilt. A change to the
// Manifest or Lockfile affects every image.
func affectedRoles(project *domain.Project, specs []domain.ImageSpec, paths []string) []domain.Role {
	hit := make(map[domain.Role]bool, len(specs))
	for _, p := range paths {
		if p == project.ManifestPath || p == project.LockfilePath {
			for _, spec := range specs {
				hit[spec.Role] = true
			}
			continue
		}
		for _, spec := range specs {
			if within(spec.Source, p) {
				hit[spec.Role] = true
			}
		}
	}

	var roles []domain.Role
	for _, spec := range specs {
		if hit[spec.Role] {
			roles = append(roles, spec.Role)
		}
	}
	return roles
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func joinRoles(roles []domain.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
