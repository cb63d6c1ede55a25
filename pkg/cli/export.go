package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gdship/pkg/cli/config"
	"github.com/m-mizutani/gdship/pkg/infra/archive"
	"github.com/m-mizutani/gdship/pkg/infra/godot"
	"github.com/m-mizutani/gdship/pkg/infra/storage"
	"github.com/m-mizutani/gdship/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdExport() *cli.Command {
	var (
		projectCfg config.Project
		godotCfg   config.Godot
		githubCfg  config.GitHub
		notifyCfg  config.Notify
	)

	var flags []cli.Flag
	flags = append(flags, projectCfg.Flags()...)
	flags = append(flags, godotCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, notifyCfg.Flags()...)

	return &cli.Command{
		Name:    "export",
		Aliases: []string{"e"},
		Usage:   "Export every preset, then publish a release or move the builds",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Debug("Configuration",
				slog.Any("project", projectCfg),
				slog.Any("godot", godotCfg),
				slog.Any("github", githubCfg),
				slog.Any("notify", notifyCfg),
			)

			repo, err := githubCfg.ParseRepository()
			if err != nil {
				return err
			}
			projectPath, err := projectCfg.ProjectPath()
			if err != nil {
				return err
			}
			workingPath, err := godotCfg.ResolveWorkingPath()
			if err != nil {
				return err
			}
			templatesPath, err := godotCfg.ResolveTemplatesPath(projectCfg.Godot3)
			if err != nil {
				return err
			}

			runCfg := usecase.RunConfig{
				BaseVersion:       projectCfg.BaseVersion,
				CreateRelease:     projectCfg.CreateRelease,
				HasCredential:     githubCfg.HasCredential(),
				Repository:        repo,
				ProjectPath:       projectPath,
				ExportDestination: projectCfg.ExportDestination(projectPath),
				WorkingPath:       workingPath,
				ArchiveOutput:     projectCfg.ArchiveOutput,
			}

			buildPath := filepath.Join(workingPath, "builds")
			archivePath := filepath.Join(workingPath, "archives")

			installer := godot.NewInstaller(godot.InstallerConfig{
				WorkingPath:   workingPath,
				ExecutableURL: godotCfg.ExecutableURL,
				TemplatesURL:  godotCfg.TemplatesURL,
				TemplatesRoot: templatesPath,
			})
			exporter := godot.NewExporter(godot.ExporterConfig{
				ProjectPath: projectPath,
				BuildPath:   buildPath,
				Presets:     projectCfg.PresetNames(),
				Debug:       projectCfg.ExportDebug,
				Verbose:     projectCfg.Verbose,
				Godot3:      projectCfg.Godot3,
				Concurrency: projectCfg.ExportConcurrency,
			})

			opts := []usecase.OrchestratorOption{
				usecase.WithPackager(archive.NewPackager(archivePath)),
				usecase.WithRelocator(storage.NewRelocator()),
			}
			if notifier := notifyCfg.NewNotifier(); notifier != nil {
				opts = append(opts, usecase.WithNotifier(notifier))
			}

			// Without a credential the orchestrator rejects release creation itself
			if runCfg.CreateRelease && runCfg.HasCredential {
				githubClient, err := githubCfg.NewClient()
				if err != nil {
					return err
				}
				opts = append(opts,
					usecase.WithReleaseHistory(usecase.NewReleaseHistory(githubClient,
						usecase.WithStrictHistory(projectCfg.StrictHistory),
					)),
					usecase.WithPublisher(usecase.NewRelease(githubClient,
						usecase.WithGenerateReleaseNotes(projectCfg.GenerateReleaseNotes),
					)),
				)
			}

			orchestrator := usecase.NewOrchestrator(runCfg, installer, exporter, opts...)
			result, err := orchestrator.Run(ctx)
			if err != nil {
				return err
			}

			pairs := []outputPair{{key: "build_directory", value: buildPath}}
			if runCfg.ArchiveOutput || runCfg.CreateRelease {
				pairs = append(pairs, outputPair{key: "archive_directory", value: archivePath})
			}
			if result.Version != nil {
				pairs = append(pairs, outputPair{key: "version", value: result.Version.String()})
			}
			if err := writeGitHubOutput(pairs...); err != nil {
				return goerr.Wrap(err, "failed to write step outputs")
			}

			printSummary(os.Stdout, result, usecase.DeliveryFor(runCfg))
			return nil
		},
	}
}
