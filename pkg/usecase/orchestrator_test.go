package usecase_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/gdship/pkg/usecase"
)

func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, model.ExportPresetsFile), []byte("[preset.0]\n"), 0644))
	return dir
}

func releaseConfig(t *testing.T) usecase.RunConfig {
	return usecase.RunConfig{
		BaseVersion:   "1.0.0",
		CreateRelease: true,
		HasCredential: true,
		Repository:    testRepo,
		ProjectPath:   newProject(t),
		WorkingPath:   filepath.Join(t.TempDir(), "work"),
	}
}

func exportedArtifacts() []model.Artifact {
	return []model.Artifact{
		{Name: "Linux", Path: "/tmp/builds/Linux", Platform: "Linux/X11"},
		{Name: "Web", Path: "/tmp/builds/Web", Platform: "Web"},
	}
}

func TestDeliveryFor(t *testing.T) {
	d := usecase.DeliveryFor(usecase.RunConfig{CreateRelease: true, ExportDestination: "/out"})
	_, ok := d.(usecase.PublishRelease)
	gt.True(t, ok)

	d = usecase.DeliveryFor(usecase.RunConfig{ExportDestination: "/out"})
	relocate, ok := d.(usecase.RelocateArtifacts)
	gt.True(t, ok)
	gt.Value(t, relocate.Destination).Equal("/out")
}

func TestOrchestrator_Run_Publish(t *testing.T) {
	ctx := context.Background()
	cfg := releaseConfig(t)

	history := &MockHistory{
		latestFunc: func(ctx context.Context, repo model.Repository) (*model.ReleaseReference, error) {
			gt.Value(t, repo).Equal(testRepo)
			return ref("v1.2.3"), nil
		},
	}
	installer := &MockInstaller{}
	exporter := &MockExporter{
		exportFunc: func(ctx context.Context, executable string) ([]model.Artifact, error) {
			gt.Value(t, executable).Equal("/usr/bin/godot")
			return exportedArtifacts(), nil
		},
	}
	packager := &MockPackager{
		packageFunc: func(ctx context.Context, version string, artifacts []model.Artifact) ([]model.Artifact, error) {
			gt.Value(t, version).Equal("1.2.4")
			gt.A(t, artifacts).Length(2)
			return []model.Artifact{
				{Name: "Linux", Path: "/tmp/archives/Linux.zip"},
				{Name: "Web", Path: "/tmp/archives/Web.zip"},
			}, nil
		},
	}
	publisher := &MockPublisher{
		publishFunc: func(ctx context.Context, repo model.Repository, version model.Version, artifacts []model.Artifact) (*model.Release, error) {
			gt.Value(t, version.String()).Equal("1.2.4")
			gt.Value(t, artifacts[0].Path).Equal("/tmp/archives/Linux.zip")
			return &model.Release{ID: 1, TagName: version.Tag()}, nil
		},
	}
	relocator := &MockRelocator{}
	notifier := &MockNotifier{}

	o := usecase.NewOrchestrator(cfg, installer, exporter,
		usecase.WithReleaseHistory(history),
		usecase.WithPackager(packager),
		usecase.WithPublisher(publisher),
		usecase.WithRelocator(relocator),
		usecase.WithNotifier(notifier),
	)

	result, err := o.Run(ctx)
	gt.NoError(t, err)
	gt.Value(t, result.Version).NotNil()
	gt.Value(t, result.Version.String()).Equal("1.2.4")
	gt.Value(t, result.Release.TagName).Equal("v1.2.4")
	gt.A(t, result.Artifacts).Length(2)

	gt.Value(t, packager.calls).Equal(1)
	gt.Value(t, publisher.calls).Equal(1)
	gt.Value(t, relocator.calls).Equal(0)
	gt.Value(t, notifier.calls).Equal(1)

	info, err := os.Stat(cfg.WorkingPath)
	gt.NoError(t, err)
	gt.True(t, info.IsDir())
}

func TestOrchestrator_Run_Relocate(t *testing.T) {
	cfg := usecase.RunConfig{
		BaseVersion:       "1.0.0",
		ProjectPath:       newProject(t),
		ExportDestination: "/srv/export",
		WorkingPath:       t.TempDir(),
	}

	history := &MockHistory{
		latestFunc: func(ctx context.Context, repo model.Repository) (*model.ReleaseReference, error) {
			t.Error("release history must not be queried without release creation")
			return nil, nil
		},
	}
	exporter := &MockExporter{
		exportFunc: func(ctx context.Context, executable string) ([]model.Artifact, error) {
			return exportedArtifacts(), nil
		},
	}
	packager := &MockPackager{}
	publisher := &MockPublisher{}
	relocator := &MockRelocator{
		relocateFunc: func(ctx context.Context, artifacts []model.Artifact, destination string) error {
			gt.Value(t, destination).Equal("/srv/export")
			gt.Value(t, artifacts).Equal(exportedArtifacts())
			return nil
		},
	}

	o := usecase.NewOrchestrator(cfg, &MockInstaller{}, exporter,
		usecase.WithReleaseHistory(history),
		usecase.WithPackager(packager),
		usecase.WithPublisher(publisher),
		usecase.WithRelocator(relocator),
	)

	result, err := o.Run(context.Background())
	gt.NoError(t, err)
	gt.Value(t, result.Version).Nil()
	gt.Value(t, result.Release).Nil()
	gt.Value(t, packager.calls).Equal(0)
	gt.Value(t, publisher.calls).Equal(0)
	gt.Value(t, relocator.calls).Equal(1)
}

func TestOrchestrator_Run_RelocateArchives(t *testing.T) {
	cfg := usecase.RunConfig{
		ProjectPath:       newProject(t),
		ExportDestination: "/srv/export",
		WorkingPath:       t.TempDir(),
		ArchiveOutput:     true,
	}

	exporter := &MockExporter{
		exportFunc: func(ctx context.Context, executable string) ([]model.Artifact, error) {
			return exportedArtifacts(), nil
		},
	}
	packager := &MockPackager{
		packageFunc: func(ctx context.Context, version string, artifacts []model.Artifact) ([]model.Artifact, error) {
			gt.Value(t, version).Equal("")
			return []model.Artifact{{Name: "Linux", Path: "/tmp/archives/Linux.zip"}}, nil
		},
	}
	relocator := &MockRelocator{
		relocateFunc: func(ctx context.Context, artifacts []model.Artifact, destination string) error {
			gt.A(t, artifacts).Length(1)
			gt.Value(t, artifacts[0].Path).Equal("/tmp/archives/Linux.zip")
			return nil
		},
	}

	o := usecase.NewOrchestrator(cfg, &MockInstaller{}, exporter,
		usecase.WithPackager(packager),
		usecase.WithRelocator(relocator),
	)

	_, err := o.Run(context.Background())
	gt.NoError(t, err)
	gt.Value(t, packager.calls).Equal(1)
	gt.Value(t, relocator.calls).Equal(1)
}

func TestOrchestrator_Run_InvalidBaseVersion(t *testing.T) {
	cfg := releaseConfig(t)
	cfg.BaseVersion = "not-a-version"

	installer := &MockInstaller{}
	exporter := &MockExporter{}
	history := &MockHistory{
		latestFunc: func(ctx context.Context, repo model.Repository) (*model.ReleaseReference, error) {
			return ref("1.2.3"), nil
		},
	}

	o := usecase.NewOrchestrator(cfg, installer, exporter, usecase.WithReleaseHistory(history))
	result, err := o.Run(context.Background())

	gt.Error(t, err)
	gt.Value(t, result).Nil()
	gt.True(t, errors.Is(err, model.ErrInvalidBaseVersion))
	gt.String(t, err.Error()).Contains("could not establish a version for the release")
	gt.Value(t, installer.calls).Equal(0)
	gt.Value(t, exporter.calls).Equal(0)

	// Nothing is created on disk before the version is known
	_, err = os.Stat(cfg.WorkingPath)
	gt.True(t, os.IsNotExist(err))
}

func TestOrchestrator_Run_MissingCredential(t *testing.T) {
	cfg := releaseConfig(t)
	cfg.HasCredential = false

	installer := &MockInstaller{}
	exporter := &MockExporter{}
	history := &MockHistory{
		latestFunc: func(ctx context.Context, repo model.Repository) (*model.ReleaseReference, error) {
			t.Error("release history must not be queried before validation")
			return nil, nil
		},
	}

	o := usecase.NewOrchestrator(cfg, installer, exporter, usecase.WithReleaseHistory(history))
	_, err := o.Run(context.Background())

	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrMissingCredential))
	gt.False(t, errors.Is(err, model.ErrMissingExportConfig))
	gt.Value(t, installer.calls).Equal(0)
	gt.Value(t, exporter.calls).Equal(0)
}

func TestOrchestrator_Run_MissingCredentialWithoutRelease(t *testing.T) {
	cfg := usecase.RunConfig{
		ProjectPath:       newProject(t),
		ExportDestination: t.TempDir(),
		WorkingPath:       t.TempDir(),
	}

	o := usecase.NewOrchestrator(cfg, &MockInstaller{}, &MockExporter{})
	_, err := o.Run(context.Background())
	gt.NoError(t, err)
}

func TestOrchestrator_Run_MissingExportConfig(t *testing.T) {
	cfg := releaseConfig(t)
	cfg.ProjectPath = t.TempDir()

	exporter := &MockExporter{}
	o := usecase.NewOrchestrator(cfg, &MockInstaller{}, exporter, usecase.WithReleaseHistory(&MockHistory{}))
	_, err := o.Run(context.Background())

	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrMissingExportConfig))
	gt.False(t, errors.Is(err, model.ErrMissingCredential))
	gt.Value(t, exporter.calls).Equal(0)
}

func TestOrchestrator_Run_NoArtifacts(t *testing.T) {
	cfg := releaseConfig(t)

	packager := &MockPackager{}
	publisher := &MockPublisher{}
	relocator := &MockRelocator{}
	exporter := &MockExporter{
		exportFunc: func(ctx context.Context, executable string) ([]model.Artifact, error) {
			return nil, nil
		},
	}

	o := usecase.NewOrchestrator(cfg, &MockInstaller{}, exporter,
		usecase.WithReleaseHistory(&MockHistory{}),
		usecase.WithPackager(packager),
		usecase.WithPublisher(publisher),
		usecase.WithRelocator(relocator),
	)

	result, err := o.Run(context.Background())
	gt.NoError(t, err)
	gt.Value(t, result.Version.String()).Equal("1.0.0")
	gt.A(t, result.Artifacts).Length(0)
	gt.Value(t, result.Release).Nil()
	gt.Value(t, packager.calls).Equal(0)
	gt.Value(t, publisher.calls).Equal(0)
	gt.Value(t, relocator.calls).Equal(0)
}

func TestOrchestrator_Run_CollaboratorFailures(t *testing.T) {
	exportOK := func(ctx context.Context, executable string) ([]model.Artifact, error) {
		return exportedArtifacts(), nil
	}

	tests := []struct {
		name      string
		installer *MockInstaller
		exporter  *MockExporter
		packager  *MockPackager
		publisher *MockPublisher
		wantMsg   string
	}{
		{
			name: "install",
			installer: &MockInstaller{installFunc: func(ctx context.Context) (string, error) {
				return "", errors.New("download failed")
			}},
			exporter:  &MockExporter{exportFunc: exportOK},
			packager:  &MockPackager{},
			publisher: &MockPublisher{},
			wantMsg:   "failed to set up Godot",
		},
		{
			name:      "export",
			installer: &MockInstaller{},
			exporter: &MockExporter{exportFunc: func(ctx context.Context, executable string) ([]model.Artifact, error) {
				return nil, errors.New("godot crashed")
			}},
			packager:  &MockPackager{},
			publisher: &MockPublisher{},
			wantMsg:   "failed to export project",
		},
		{
			name:      "package",
			installer: &MockInstaller{},
			exporter:  &MockExporter{exportFunc: exportOK},
			packager: &MockPackager{packageFunc: func(ctx context.Context, version string, artifacts []model.Artifact) ([]model.Artifact, error) {
				return nil, errors.New("disk full")
			}},
			publisher: &MockPublisher{},
			wantMsg:   "failed to archive exported artifacts",
		},
		{
			name:      "publish",
			installer: &MockInstaller{},
			exporter:  &MockExporter{exportFunc: exportOK},
			packager:  &MockPackager{},
			publisher: &MockPublisher{publishFunc: func(ctx context.Context, repo model.Repository, version model.Version, artifacts []model.Artifact) (*model.Release, error) {
				return nil, errors.New("forbidden")
			}},
			wantMsg: "failed to publish release",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := usecase.NewOrchestrator(releaseConfig(t), tt.installer, tt.exporter,
				usecase.WithReleaseHistory(&MockHistory{}),
				usecase.WithPackager(tt.packager),
				usecase.WithPublisher(tt.publisher),
			)

			result, err := o.Run(context.Background())
			gt.Error(t, err)
			gt.Value(t, result).Nil()
			gt.String(t, err.Error()).Contains(tt.wantMsg)
		})
	}
}

func TestOrchestrator_Run_RelocateFailure(t *testing.T) {
	cfg := usecase.RunConfig{
		ProjectPath:       newProject(t),
		ExportDestination: "/srv/export",
		WorkingPath:       t.TempDir(),
	}
	exporter := &MockExporter{
		exportFunc: func(ctx context.Context, executable string) ([]model.Artifact, error) {
			return exportedArtifacts(), nil
		},
	}
	relocator := &MockRelocator{
		relocateFunc: func(ctx context.Context, artifacts []model.Artifact, destination string) error {
			return errors.New("permission denied")
		},
	}

	o := usecase.NewOrchestrator(cfg, &MockInstaller{}, exporter, usecase.WithRelocator(relocator))
	_, err := o.Run(context.Background())
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("failed to move artifacts")
}

func TestOrchestrator_Run_NotifierFailureIsNotFatal(t *testing.T) {
	exporter := &MockExporter{
		exportFunc: func(ctx context.Context, executable string) ([]model.Artifact, error) {
			return exportedArtifacts(), nil
		},
	}
	notifier := &MockNotifier{
		notifyReleaseFunc: func(ctx context.Context, repo model.Repository, release *model.Release) error {
			return errors.New("webhook gone")
		},
	}

	o := usecase.NewOrchestrator(releaseConfig(t), &MockInstaller{}, exporter,
		usecase.WithReleaseHistory(&MockHistory{}),
		usecase.WithPackager(&MockPackager{}),
		usecase.WithPublisher(&MockPublisher{}),
		usecase.WithNotifier(notifier),
	)

	result, err := o.Run(context.Background())
	gt.NoError(t, err)
	gt.Value(t, result.Release.TagName).Equal("v1.0.0")
	gt.Value(t, notifier.calls).Equal(1)
}

func TestOrchestrator_Run_HistoryError(t *testing.T) {
	history := &MockHistory{
		latestFunc: func(ctx context.Context, repo model.Repository) (*model.ReleaseReference, error) {
			return nil, errors.New("rate limited")
		},
	}
	exporter := &MockExporter{}

	o := usecase.NewOrchestrator(releaseConfig(t), &MockInstaller{}, exporter, usecase.WithReleaseHistory(history))
	_, err := o.Run(context.Background())
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("could not establish a version for the release")
	gt.Value(t, exporter.calls).Equal(0)
}

func TestOrchestrator_Run_MissingRepository(t *testing.T) {
	cfg := releaseConfig(t)
	cfg.Repository = model.Repository{}

	exporter := &MockExporter{}
	o := usecase.NewOrchestrator(cfg, &MockInstaller{}, exporter, usecase.WithReleaseHistory(&MockHistory{}))
	_, err := o.Run(context.Background())
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrInvalidRepository))
	gt.Value(t, exporter.calls).Equal(0)
}
