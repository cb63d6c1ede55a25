package usecase

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

const msgVersionUnresolved = "could not establish a version for the release"

// RunConfig is the configuration of one export run. It is built once by the CLI
// layer and never modified by the orchestrator.
type RunConfig struct {
	BaseVersion       string
	CreateRelease     bool
	HasCredential     bool
	Repository        model.Repository
	ProjectPath       string // Directory holding project.godot and export_presets.cfg
	ExportDestination string // Relocation target when no release is created
	WorkingPath       string // Scratch directory for downloads, builds and archives
	ArchiveOutput     bool
}

// Delivery is the final step of a run: either PublishRelease or RelocateArtifacts
type Delivery interface {
	delivery()
}

// PublishRelease publishes the artifacts as a new versioned release
type PublishRelease struct{}

// RelocateArtifacts moves the artifacts to Destination
type RelocateArtifacts struct {
	Destination string
}

func (PublishRelease) delivery()    {}
func (RelocateArtifacts) delivery() {}

// DeliveryFor selects the delivery from the create-release setting
func DeliveryFor(cfg RunConfig) Delivery {
	if cfg.CreateRelease {
		return PublishRelease{}
	}
	return RelocateArtifacts{Destination: cfg.ExportDestination}
}

// RunResult summarizes a completed run
type RunResult struct {
	Version   *model.Version   // Resolved release version, nil when not releasing
	Artifacts []model.Artifact // Delivered artifacts
	Release   *model.Release   // Published release, nil when relocating
}

// Orchestrator sequences validation, version resolution, dependency setup,
// export, packaging and delivery
type Orchestrator struct {
	cfg       RunConfig
	delivery  Delivery
	history   interfaces.ReleaseHistory
	installer interfaces.Installer
	exporter  interfaces.Exporter
	packager  interfaces.Packager
	publisher interfaces.Publisher
	relocator interfaces.Relocator
	notifier  interfaces.Notifier
}

// OrchestratorOption configures optional collaborators of Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithReleaseHistory sets the release history lookup
func WithReleaseHistory(history interfaces.ReleaseHistory) OrchestratorOption {
	return func(o *Orchestrator) {
		o.history = history
	}
}

// WithPublisher sets the release publisher
func WithPublisher(publisher interfaces.Publisher) OrchestratorOption {
	return func(o *Orchestrator) {
		o.publisher = publisher
	}
}

// WithRelocator sets the artifact relocator
func WithRelocator(relocator interfaces.Relocator) OrchestratorOption {
	return func(o *Orchestrator) {
		o.relocator = relocator
	}
}

// WithPackager sets the packager used when archive output is enabled or a release is created
func WithPackager(packager interfaces.Packager) OrchestratorOption {
	return func(o *Orchestrator) {
		o.packager = packager
	}
}

// WithNotifier sets a notifier called after a release is published
func WithNotifier(notifier interfaces.Notifier) OrchestratorOption {
	return func(o *Orchestrator) {
		o.notifier = notifier
	}
}

// NewOrchestrator creates an Orchestrator. The delivery is fixed here from cfg.
func NewOrchestrator(cfg RunConfig, installer interfaces.Installer, exporter interfaces.Exporter, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		cfg:       cfg,
		delivery:  DeliveryFor(cfg),
		installer: installer,
		exporter:  exporter,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one export run. Phases run strictly in order and the first error
// aborts the run. Nothing is rolled back: exported files stay on disk.
//
// Phase sequence:
//  1. VALIDATE:  credential (when releasing) and export_presets.cfg
//  2. VERSION:   release history + ResolveVersion (when releasing)
//  3. WORKDIR:   create the working path
//  4. INSTALL:   Godot executable and export templates
//  5. EXPORT:    run every preset; no artifacts ends the run successfully
//  6. PACKAGE:   archive artifacts (archive output or release)
//  7. DELIVER:   publish release or relocate artifacts
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	logger := ctxlog.From(ctx)

	if err := o.validate(); err != nil {
		return nil, err
	}

	result := &RunResult{}

	if _, ok := o.delivery.(PublishRelease); ok {
		version, err := o.resolveVersion(ctx)
		if err != nil {
			return nil, err
		}
		result.Version = &version
		logger.Info("Resolved release version", "version", version.String())
	}

	if err := os.MkdirAll(o.cfg.WorkingPath, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create working directory", goerr.V("path", o.cfg.WorkingPath))
	}

	executable, err := o.installer.Install(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to set up Godot")
	}

	artifacts, err := o.exporter.Export(ctx, executable)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to export project")
	}
	if len(artifacts) == 0 {
		logger.Warn("No artifacts were exported, nothing to deliver")
		return result, nil
	}

	if o.cfg.ArchiveOutput || o.cfg.CreateRelease {
		if o.packager == nil {
			return nil, goerr.New("packager is not configured")
		}
		label := ""
		if result.Version != nil {
			label = result.Version.String()
		}
		artifacts, err = o.packager.Package(ctx, label, artifacts)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to archive exported artifacts")
		}
	}
	result.Artifacts = artifacts

	switch d := o.delivery.(type) {
	case PublishRelease:
		release, err := o.publish(ctx, *result.Version, artifacts)
		if err != nil {
			return nil, err
		}
		result.Release = release

	case RelocateArtifacts:
		if o.relocator == nil {
			return nil, goerr.New("relocator is not configured")
		}
		if err := o.relocator.Relocate(ctx, artifacts, d.Destination); err != nil {
			return nil, goerr.Wrap(err, "failed to move artifacts", goerr.V("destination", d.Destination))
		}
		logger.Info("Moved artifacts", "destination", d.Destination, "count", len(artifacts))
	}

	return result, nil
}

func (o *Orchestrator) validate() error {
	if o.cfg.CreateRelease && !o.cfg.HasCredential {
		return goerr.Wrap(model.ErrMissingCredential, "invalid configuration")
	}
	if o.cfg.CreateRelease && o.cfg.Repository.IsZero() {
		return goerr.Wrap(model.ErrInvalidRepository, "invalid configuration: no repository to release in")
	}

	presetsPath := filepath.Join(o.cfg.ProjectPath, model.ExportPresetsFile)
	info, err := os.Stat(presetsPath)
	if err != nil || info.IsDir() {
		return goerr.Wrap(model.ErrMissingExportConfig, "invalid configuration", goerr.V("path", presetsPath))
	}

	return nil
}

func (o *Orchestrator) resolveVersion(ctx context.Context) (model.Version, error) {
	if o.history == nil {
		return model.Version{}, goerr.New(msgVersionUnresolved + ": release history is not configured")
	}

	latest, err := o.history.Latest(ctx, o.cfg.Repository)
	if err != nil {
		return model.Version{}, goerr.Wrap(err, msgVersionUnresolved)
	}

	version, err := ResolveVersion(o.cfg.BaseVersion, latest)
	if err != nil {
		return model.Version{}, goerr.Wrap(err, msgVersionUnresolved)
	}

	return version, nil
}

func (o *Orchestrator) publish(ctx context.Context, version model.Version, artifacts []model.Artifact) (*model.Release, error) {
	if o.publisher == nil {
		return nil, goerr.New("publisher is not configured")
	}

	release, err := o.publisher.Publish(ctx, o.cfg.Repository, version, artifacts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to publish release", goerr.V("version", version.String()))
	}

	if o.notifier != nil {
		if err := o.notifier.NotifyRelease(ctx, o.cfg.Repository, release); err != nil {
			ctxlog.From(ctx).Warn("Failed to send release notification", "error", err)
		}
	}

	return release, nil
}
