package ports

import "go.trai.ch/tandem/internal/core/domain"

// BuildInfoStore defines the interface for storing and retrieving stage cache records.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type BuildInfoStore interface {
	// Get retrieves the record for key under root.
	// Returns nil, nil if not found.
	Get(root, key string) (*domain.BuildInfo, error)

	// Put stores the record under its own key.
	Put(root string, info domain.BuildInfo) error
}
