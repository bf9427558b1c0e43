package ports

import "go.trai.ch/tandem/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds tandem.yaml starting at cwd and walking up, and returns the project with
	// every path made absolute.
	Load(cwd string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to the directory containing tandem.yaml.
	DiscoverRoot(cwd string) (string, error)
}
