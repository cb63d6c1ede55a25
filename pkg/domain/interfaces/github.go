package interfaces

import (
	"context"

	"github.com/google/go-github/v75/github"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// LatestReleaseTag returns the tag of the most recently published release.
	// An empty tag and nil error mean the repository has no release.
	LatestReleaseTag(ctx context.Context, owner, repo string) (string, error)

	// CreateRelease creates a published release
	CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, error)

	// UploadReleaseAsset uploads one asset to an existing release
	UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, asset *ReleaseAsset) (*github.ReleaseAsset, error)
}

// ReleaseAsset is a local file to attach to a release
type ReleaseAsset struct {
	Name      string
	MediaType string
	Path      string
}
