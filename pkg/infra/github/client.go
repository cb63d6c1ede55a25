package github

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

type client struct {
	githubClient *github.Client
}

// Option configures the GitHub client
type Option func(*config)

type config struct {
	baseURL   string
	uploadURL string
	transport http.RoundTripper
}

// WithBaseURL points the client at a GitHub Enterprise Server or a test server.
// uploadURL defaults to baseURL when empty.
func WithBaseURL(baseURL, uploadURL string) Option {
	return func(c *config) {
		c.baseURL = baseURL
		c.uploadURL = uploadURL
	}
}

// WithTransport sets the base HTTP transport
func WithTransport(tr http.RoundTripper) Option {
	return func(c *config) {
		c.transport = tr
	}
}

// NewClient creates a new GitHub client with App authentication
func NewClient(appID, installationID int64, privateKey []byte, opts ...Option) (interfaces.GitHubClient, error) {
	cfg := newConfig(opts)

	// Create GitHub App transport
	itr, err := ghinstallation.New(cfg.transport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID),
		)
	}
	if cfg.baseURL != "" {
		itr.BaseURL = strings.TrimSuffix(cfg.baseURL, "/")
	}

	return newClient(&http.Client{Transport: itr}, cfg)
}

// NewClientWithToken creates a new GitHub client authenticated by a token such as GITHUB_TOKEN
func NewClientWithToken(token string, opts ...Option) (interfaces.GitHubClient, error) {
	cfg := newConfig(opts)
	httpClient := &http.Client{Transport: cfg.transport}
	gh, err := newClient(httpClient, cfg)
	if err != nil {
		return nil, err
	}
	gh.githubClient = gh.githubClient.WithAuthToken(token)
	return gh, nil
}

func newConfig(opts []Option) *config {
	cfg := &config{
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func newClient(httpClient *http.Client, cfg *config) (*client, error) {
	githubClient := github.NewClient(httpClient)

	if cfg.baseURL != "" {
		baseURL, err := parseAPIURL(cfg.baseURL)
		if err != nil {
			return nil, err
		}
		uploadURL := baseURL
		if cfg.uploadURL != "" {
			if uploadURL, err = parseAPIURL(cfg.uploadURL); err != nil {
				return nil, err
			}
		}
		githubClient.BaseURL = baseURL
		githubClient.UploadURL = uploadURL
	}

	return &client{
		githubClient: githubClient,
	}, nil
}

func parseAPIURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid GitHub API URL", goerr.V("url", raw))
	}
	return u, nil
}

// LatestReleaseTag returns the tag of the latest published release, or an empty
// string when the repository has none
func (c *client) LatestReleaseTag(ctx context.Context, owner, repo string) (string, error) {
	release, resp, err := c.githubClient.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == http.StatusNotFound {
			return "", nil
		}
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to get latest release",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
		)
	}

	return release.GetTagName(), nil
}

// CreateRelease creates a release
func (c *client) CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, error) {
	created, _, err := c.githubClient.Repositories.CreateRelease(ctx, owner, repo, release)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create release",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("tag", release.GetTagName()),
		)
	}
	return created, nil
}

// UploadReleaseAsset uploads a local file to a release
func (c *client) UploadReleaseAsset(ctx context.Context, owner, repo string, releaseID int64, asset *interfaces.ReleaseAsset) (*github.ReleaseAsset, error) {
	file, err := os.Open(asset.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open release asset", goerr.V("path", asset.Path))
	}
	defer file.Close()

	uploaded, _, err := c.githubClient.Repositories.UploadReleaseAsset(ctx, owner, repo, releaseID, &github.UploadOptions{
		Name:      asset.Name,
		MediaType: asset.MediaType,
	}, file)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upload release asset",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("release_id", releaseID),
			goerr.V("name", asset.Name),
		)
	}

	return uploaded, nil
}
