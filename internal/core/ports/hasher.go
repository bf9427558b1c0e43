package ports

// Hasher defines the interface for computing content hashes and cache keys.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashTree hashes every file under dir, including relative paths, in walk order.
	HashTree(dir string) (string, error)

	// HashKey derives a cache key from ordered parts.
	HashKey(parts ...string) string
}

// TreeCopier copies directory trees.
type TreeCopier interface {
	// CopyTree copies src into dst, creating dst. Version control directories are skipped.
	CopyTree(src, dst string) error
}
