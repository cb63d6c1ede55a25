package interfaces

import (
	"context"

	"github.com/m-mizutani/gdship/pkg/domain/model"
)

// Installer prepares the Godot executable and export templates
type Installer interface {
	// Install returns the path of a runnable Godot executable
	Install(ctx context.Context) (string, error)
}

// Exporter runs Godot exports for the configured presets
type Exporter interface {
	Export(ctx context.Context, executable string) ([]model.Artifact, error)
}

// Packager turns exported artifacts into distributable archives
type Packager interface {
	Package(ctx context.Context, version string, artifacts []model.Artifact) ([]model.Artifact, error)
}
