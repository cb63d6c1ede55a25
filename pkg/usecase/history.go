package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type releaseHistory struct {
	githubClient interfaces.GitHubClient
	strict       bool
}

// HistoryOption configures ReleaseHistory
type HistoryOption func(*releaseHistory)

// WithStrictHistory makes release history query failures fatal instead of
// treating them as "no prior release"
func WithStrictHistory(strict bool) HistoryOption {
	return func(h *releaseHistory) {
		h.strict = strict
	}
}

// NewReleaseHistory creates a new instance of ReleaseHistory
func NewReleaseHistory(githubClient interfaces.GitHubClient, opts ...HistoryOption) interfaces.ReleaseHistory {
	h := &releaseHistory{
		githubClient: githubClient,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Latest returns the latest published release of repo. A query failure is
// logged and reported as no release unless strict mode is enabled, so a
// transient API error can not be told apart from a repository with no release.
func (h *releaseHistory) Latest(ctx context.Context, repo model.Repository) (*model.ReleaseReference, error) {
	logger := ctxlog.From(ctx)

	tag, err := h.githubClient.LatestReleaseTag(ctx, repo.Owner, repo.Name)
	if err != nil {
		if h.strict {
			return nil, goerr.Wrap(err, "failed to look up latest release", goerr.V("repository", repo.String()))
		}
		logger.Warn("Failed to look up latest release, assuming none",
			"error", err,
			"repository", repo.String(),
		)
		return nil, nil
	}

	if tag == "" {
		logger.Info("No previous release found", "repository", repo.String())
		return nil, nil
	}

	ref := &model.ReleaseReference{TagName: tag}
	version, err := model.ParseVersion(tag)
	if err != nil {
		logger.Warn("Latest release tag is not a semantic version, ignoring it",
			"tag", tag,
			"repository", repo.String(),
		)
		return ref, nil
	}
	ref.Version = &version

	logger.Info("Found latest release",
		"tag", tag,
		"version", version.String(),
		"repository", repo.String(),
	)

	return ref, nil
}
