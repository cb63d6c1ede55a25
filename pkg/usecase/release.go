package usecase

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/go-github/v75/github"
	"github.com/h2non/filetype"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

const defaultMediaType = "application/octet-stream"

type releaseUseCase struct {
	githubClient         interfaces.GitHubClient
	generateReleaseNotes bool
}

// ReleaseOption configures the release publisher
type ReleaseOption func(*releaseUseCase)

// WithGenerateReleaseNotes asks GitHub to generate release notes from merged pull requests
func WithGenerateReleaseNotes(enabled bool) ReleaseOption {
	return func(uc *releaseUseCase) {
		uc.generateReleaseNotes = enabled
	}
}

// NewRelease creates a new instance of Publisher backed by GitHub releases
func NewRelease(githubClient interfaces.GitHubClient, opts ...ReleaseOption) interfaces.Publisher {
	uc := &releaseUseCase{
		githubClient: githubClient,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Publish creates release v<version> and uploads every artifact as an asset.
// Artifacts must be regular files; directories are rejected before anything is created.
func (uc *releaseUseCase) Publish(ctx context.Context, repo model.Repository, version model.Version, artifacts []model.Artifact) (*model.Release, error) {
	logger := ctxlog.From(ctx)

	assets := make([]*interfaces.ReleaseAsset, 0, len(artifacts))
	for _, artifact := range artifacts {
		asset, err := newReleaseAsset(artifact)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	tag := version.Tag()
	logger.Info("Creating release",
		"repository", repo.String(),
		"tag", tag,
		"asset_count", len(assets),
	)

	created, err := uc.githubClient.CreateRelease(ctx, repo.Owner, repo.Name, &github.RepositoryRelease{
		TagName:              github.Ptr(tag),
		Name:                 github.Ptr(tag),
		GenerateReleaseNotes: github.Ptr(uc.generateReleaseNotes),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create release",
			goerr.V("repository", repo.String()),
			goerr.V("tag", tag),
		)
	}

	release := &model.Release{
		ID:      created.GetID(),
		TagName: created.GetTagName(),
		Name:    created.GetName(),
		URL:     created.GetHTMLURL(),
	}

	for _, asset := range assets {
		uploaded, err := uc.githubClient.UploadReleaseAsset(ctx, repo.Owner, repo.Name, release.ID, asset)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to upload release asset",
				goerr.V("repository", repo.String()),
				goerr.V("tag", tag),
				goerr.V("asset", asset.Name),
			)
		}

		logger.Info("Uploaded release asset",
			"name", uploaded.GetName(),
			"size_bytes", uploaded.GetSize(),
			"content_type", asset.MediaType,
		)
		release.Assets = append(release.Assets, asset.Name)
	}

	logger.Info("Release published",
		"repository", repo.String(),
		"tag", release.TagName,
		"url", release.URL,
	)

	return release, nil
}

// newReleaseAsset checks the artifact is an uploadable file and detects its content type
func newReleaseAsset(artifact model.Artifact) (*interfaces.ReleaseAsset, error) {
	info, err := os.Stat(artifact.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to stat artifact", goerr.V("path", artifact.Path))
	}
	if info.IsDir() {
		return nil, goerr.New("artifact is a directory, archive it before publishing",
			goerr.V("artifact", artifact.Name),
			goerr.V("path", artifact.Path),
		)
	}

	mediaType := defaultMediaType
	kind, err := filetype.MatchFile(artifact.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to detect artifact type", goerr.V("path", artifact.Path))
	}
	if kind != filetype.Unknown && kind.MIME.Value != "" {
		mediaType = kind.MIME.Value
	}

	return &interfaces.ReleaseAsset{
		Name:      filepath.Base(artifact.Path),
		MediaType: mediaType,
		Path:      artifact.Path,
	}, nil
}
