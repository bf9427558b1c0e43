package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of file system change.
type WatchOp int

const (
	// OpCreate is a file or directory creation.
	OpCreate WatchOp = iota
	// OpWrite is a content change.
	OpWrite
	// OpRemove is a deletion.
	OpRemove
	// OpRename is a rename away from the path.
	OpRename
)

// WatchEvent is one file system change.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

// Watcher reports changes under a set of directories.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type Watcher interface {
	// Start watches dirs recursively until ctx is cancelled or Stop is called.
	Start(ctx context.Context, dirs ...string) error
	// Events yields changes until the watcher stops.
	Events() iter.Seq[WatchEvent]
	// Stop releases the watcher.
	Stop() error
}
