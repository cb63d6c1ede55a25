package interfaces

import (
	"context"

	"github.com/m-mizutani/gdship/pkg/domain/model"
)

// ReleaseHistory looks up the latest published release
type ReleaseHistory interface {
	// Latest returns nil when no usable prior release exists
	Latest(ctx context.Context, repo model.Repository) (*model.ReleaseReference, error)
}

// Publisher publishes a versioned release with artifacts attached
type Publisher interface {
	Publish(ctx context.Context, repo model.Repository, version model.Version, artifacts []model.Artifact) (*model.Release, error)
}

// Relocator moves artifacts into a destination
type Relocator interface {
	Relocate(ctx context.Context, artifacts []model.Artifact, destination string) error
}

// Notifier announces a published release
type Notifier interface {
	NotifyRelease(ctx context.Context, repo model.Repository, release *model.Release) error
}
