package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gdship/pkg/cli/config"
	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/gdship/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdNextVersion() *cli.Command {
	var (
		projectCfg config.Project
		githubCfg  config.GitHub
	)

	flags := append(projectCfg.VersionFlags(), githubCfg.Flags()...)

	return &cli.Command{
		Name:    "next-version",
		Aliases: []string{"v"},
		Usage:   "Print the version the next release would get",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			repo, err := githubCfg.ParseRepository()
			if err != nil {
				return err
			}

			var latest *model.ReleaseReference
			if githubCfg.HasCredential() && !repo.IsZero() {
				githubClient, err := githubCfg.NewClient()
				if err != nil {
					return err
				}
				history := usecase.NewReleaseHistory(githubClient, usecase.WithStrictHistory(projectCfg.StrictHistory))
				if latest, err = history.Latest(ctx, repo); err != nil {
					return err
				}
			} else {
				logger.Warn("No GitHub credential or repository, resolving from the base version only")
			}

			version, err := usecase.ResolveVersion(projectCfg.BaseVersion, latest)
			if err != nil {
				return goerr.Wrap(err, "could not establish a version for the release")
			}

			if err := writeGitHubOutput(outputPair{key: "version", value: version.String()}); err != nil {
				return goerr.Wrap(err, "failed to write step outputs")
			}

			fmt.Fprintln(c.Root().Writer, version.String())
			return nil
		},
	}
}
