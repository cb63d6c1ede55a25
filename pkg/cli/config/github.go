package config

import (
	"os"
	"strings"

	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/gdship/pkg/infra/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub credentials and the target repository
type GitHub struct {
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"` // PEM content or path to a PEM file
	Repository     string
	APIURL         string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token used to create releases",
			Destination: &c.Token,
			Sources:     cli.EnvVars("GDSHIP_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID, used instead of a token",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("GDSHIP_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-app-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("GDSHIP_GITHUB_APP_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App private key (PEM content or file path)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("GDSHIP_GITHUB_APP_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-repository",
			Usage:       "Repository to release in owner/name form",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("GDSHIP_GITHUB_REPOSITORY", "GITHUB_REPOSITORY"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub API base URL for GitHub Enterprise Server",
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("GDSHIP_GITHUB_API_URL", "GITHUB_API_URL"),
		},
	}
}

// HasCredential reports whether a token or a complete GitHub App credential is set
func (c *GitHub) HasCredential() bool {
	return c.Token != "" || c.hasAppCredential()
}

func (c *GitHub) hasAppCredential() bool {
	return c.AppID != 0 && c.InstallationID != 0 && c.PrivateKey != ""
}

// ParseRepository returns the configured repository. An empty value yields a zero Repository.
func (c *GitHub) ParseRepository() (model.Repository, error) {
	if c.Repository == "" {
		return model.Repository{}, nil
	}
	return model.ParseRepository(c.Repository)
}

// NewClient creates a GitHub client. The token takes precedence over GitHub App credentials.
func (c *GitHub) NewClient() (interfaces.GitHubClient, error) {
	var opts []github.Option
	if c.APIURL != "" && c.APIURL != "https://api.github.com" {
		opts = append(opts, github.WithBaseURL(c.APIURL, uploadURL(c.APIURL)))
	}

	if c.Token != "" {
		return github.NewClientWithToken(c.Token, opts...)
	}

	if !c.hasAppCredential() {
		return nil, goerr.Wrap(model.ErrMissingCredential, "failed to create GitHub client")
	}

	key, err := c.privateKey()
	if err != nil {
		return nil, err
	}
	return github.NewClient(c.AppID, c.InstallationID, key, opts...)
}

func (c *GitHub) privateKey() ([]byte, error) {
	if strings.Contains(c.PrivateKey, "-----BEGIN") {
		return []byte(c.PrivateKey), nil
	}

	path, err := homedir.Expand(c.PrivateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to expand private key path")
	}
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read GitHub App private key", goerr.V("path", path))
	}
	return key, nil
}

// uploadURL derives the GitHub Enterprise upload endpoint from its API URL
func uploadURL(apiURL string) string {
	base := strings.TrimSuffix(apiURL, "/")
	if prefix, ok := strings.CutSuffix(base, "/api/v3"); ok {
		return prefix + "/api/uploads/"
	}
	return base + "/"
}
