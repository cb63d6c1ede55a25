package usecase_test

import (
	"context"
	"errors"
	"sync"

	"github.com/google/go-github/v75/github"

	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/gdship/pkg/domain/model"
)

// MockGitHubClient is a mock implementation of GitHubClient
type MockGitHubClient struct {
	latestReleaseTagFunc   func(ctx context.Context, owner, repo string) (string, error)
	createReleaseFunc      func(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, error)
	uploadReleaseAssetFunc func(ctx context.Context, owner, repo string, releaseID int64, asset *interfaces.ReleaseAsset) (*github.ReleaseAsset, error)

	mu       sync.Mutex
	created  []*github.RepositoryRelease
	uploaded []*interfaces.ReleaseAsset
}

func (m *MockGitHubClient) LatestReleaseTag(ctx context.Context, owner, repo string) (string, error) {
	if m.latestReleaseTagFunc != nil {
		return m.latestReleaseTagFunc(ctx, owner, repo)
	}
	return "", errors.New("mock not configured")
}

func (m *MockGitHubClient) CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, error) {
	m.mu.Lock()
	m.created = append(m.created, release)
	m.mu.Unlock()
	if m.createReleaseFunc != nil {
		return m.createReleaseFunc(ctx, owner, repo, release)
	}
	return nil, errors.New("mock not configured")
}

func (m *MockGitHubClient) UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, asset *interfaces.ReleaseAsset) (*github.ReleaseAsset, error) {
	m.mu.Lock()
	m.uploaded = append(m.uploaded, asset)
	m.mu.Unlock()
	if m.uploadReleaseAssetFunc != nil {
		return m.uploadReleaseAssetFunc(ctx, owner, repo, releaseID, asset)
	}
	return nil, errors.New("mock not configured")
}

// MockHistory is a mock implementation of ReleaseHistory
type MockHistory struct {
	latestFunc func(ctx context.Context, repo model.Repository) (*model.ReleaseReference, error)
}

func (m *MockHistory) Latest(ctx context.Context, repo model.Repository) (*model.ReleaseReference, error) {
	if m.latestFunc != nil {
		return m.latestFunc(ctx, repo)
	}
	return nil, nil
}

// MockInstaller is a mock implementation of Installer
type MockInstaller struct {
	installFunc func(ctx context.Context) (string, error)
	calls       int
}

func (m *MockInstaller) Install(ctx context.Context) (string, error) {
	m.calls++
	if m.installFunc != nil {
		return m.installFunc(ctx)
	}
	return "/usr/bin/godot", nil
}

// MockExporter is a mock implementation of Exporter
type MockExporter struct {
	exportFunc func(ctx context.Context, executable string) ([]model.Artifact, error)
	calls      int
}

func (m *MockExporter) Export(ctx context.Context, executable string) ([]model.Artifact, error) {
	m.calls++
	if m.exportFunc != nil {
		return m.exportFunc(ctx, executable)
	}
	return nil, nil
}

// MockPackager is a mock implementation of Packager
type MockPackager struct {
	packageFunc func(ctx context.Context, version string, artifacts []model.Artifact) ([]model.Artifact, error)
	calls       int
}

func (m *MockPackager) Package(ctx context.Context, version string, artifacts []model.Artifact) ([]model.Artifact, error) {
	m.calls++
	if m.packageFunc != nil {
		return m.packageFunc(ctx, version, artifacts)
	}
	return artifacts, nil
}

// MockPublisher is a mock implementation of Publisher
type MockPublisher struct {
	publishFunc func(ctx context.Context, repo model.Repository, version model.Version, artifacts []model.Artifact) (*model.Release, error)
	calls       int
}

func (m *MockPublisher) Publish(ctx context.Context, repo model.Repository, version model.Version, artifacts []model.Artifact) (*model.Release, error) {
	m.calls++
	if m.publishFunc != nil {
		return m.publishFunc(ctx, repo, version, artifacts)
	}
	return &model.Release{TagName: version.Tag()}, nil
}

// MockRelocator is a mock implementation of Relocator
type MockRelocator struct {
	relocateFunc func(ctx context.Context, artifacts []model.Artifact, destination string) error
	calls        int
}

func (m *MockRelocator) Relocate(ctx context.Context, artifacts []model.Artifact, destination string) error {
	m.calls++
	if m.relocateFunc != nil {
		return m.relocateFunc(ctx, artifacts, destination)
	}
	return nil
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	notifyReleaseFunc func(ctx context.Context, repo model.Repository, release *model.Release) error
	calls             int
}

func (m *MockNotifier) NotifyRelease(ctx context.Context, repo model.Repository, release *model.Release) error {
	m.calls++
	if m.notifyReleaseFunc != nil {
		return m.notifyReleaseFunc(ctx, repo, release)
	}
	return nil
}
