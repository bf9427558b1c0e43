package ports

import (
	"context"

	"go.trai.ch/tandem/internal/core/domain"
)

// Launcher runs a Service Image's entry point.
//
//go:generate mockgen -source=launcher.go -destination=mocks/mock_launcher.go -package=mocks
type Launcher interface {
	// Launch binds the entry point address and serves until ctx is cancelled.
	// It returns nil only for a clean stop, domain.ErrNetworkBind when the address is taken.
	Launch(ctx context.Context, img domain.ServiceImage, env domain.DependencyEnvironment) error
}
