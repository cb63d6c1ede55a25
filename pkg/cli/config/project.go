package config

import (
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const defaultExportPath = "export"

// Project holds the export and release settings of the Godot project
type Project struct {
	BaseVersion          string
	CreateRelease        bool
	RelativeProjectPath  string
	RelativeExportPath   string
	ArchiveOutput        bool
	GenerateReleaseNotes bool
	StrictHistory        bool
	Presets              []string
	ExportDebug          bool
	ExportConcurrency    int
	Verbose              bool
	Godot3               bool
}

// envVars returns the gdship variable and the GitHub Actions input variable for name
func envVars(name string) cli.ValueSourceChain {
	return cli.EnvVars("GDSHIP_"+name, "INPUT_"+name)
}

// VersionFlags returns the flags needed to resolve the release version
func (c *Project) VersionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "base-version",
			Usage:       "Minimum version to release; used as is when above the latest release",
			Value:       "0.0.1",
			Destination: &c.BaseVersion,
			Sources:     envVars("BASE_VERSION"),
		},
		&cli.BoolFlag{
			Name:        "strict-history",
			Usage:       "Fail when the latest release can not be looked up instead of assuming none",
			Destination: &c.StrictHistory,
			Sources:     envVars("STRICT_HISTORY"),
		},
	}
}

// Flags returns CLI flags for project configuration
func (c *Project) Flags() []cli.Flag {
	return append(c.VersionFlags(),
		&cli.BoolFlag{
			Name:        "create-release",
			Usage:       "Publish the exported artifacts as a new GitHub release",
			Destination: &c.CreateRelease,
			Sources:     envVars("CREATE_RELEASE"),
		},
		&cli.StringFlag{
			Name:        "relative-project-path",
			Usage:       "Directory holding project.godot, relative to the working directory",
			Value:       "./",
			Destination: &c.RelativeProjectPath,
			Sources:     envVars("RELATIVE_PROJECT_PATH"),
		},
		&cli.StringFlag{
			Name:        "relative-export-path",
			Usage:       "Where artifacts are moved when no release is created, relative to the project. A gs://bucket/prefix URL uploads to Cloud Storage",
			Value:       defaultExportPath,
			Destination: &c.RelativeExportPath,
			Sources:     envVars("RELATIVE_EXPORT_PATH"),
		},
		&cli.BoolFlag{
			Name:        "archive-output",
			Usage:       "Zip each exported preset",
			Destination: &c.ArchiveOutput,
			Sources:     envVars("ARCHIVE_OUTPUT"),
		},
		&cli.BoolFlag{
			Name:        "generate-release-notes",
			Usage:       "Let GitHub generate release notes for the new release",
			Destination: &c.GenerateReleaseNotes,
			Sources:     envVars("GENERATE_RELEASE_NOTES"),
		},
		&cli.StringSliceFlag{
			Name:        "presets",
			Usage:       "Export preset names to build, all presets when omitted",
			Destination: &c.Presets,
			Sources:     envVars("PRESETS"),
		},
		&cli.BoolFlag{
			Name:        "export-debug",
			Usage:       "Export debug builds",
			Destination: &c.ExportDebug,
			Sources:     envVars("EXPORT_DEBUG"),
		},
		&cli.IntFlag{
			Name:        "export-concurrency",
			Usage:       "Number of presets exported in parallel",
			Value:       1,
			Destination: &c.ExportConcurrency,
			Sources:     envVars("EXPORT_CONCURRENCY"),
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "Pass --verbose to Godot",
			Destination: &c.Verbose,
			Sources:     envVars("VERBOSE"),
		},
		&cli.BoolFlag{
			Name:        "godot3",
			Usage:       "Use the Godot 3 command line",
			Destination: &c.Godot3,
			Sources:     envVars("GODOT3"),
		},
	)
}

// ProjectPath returns the absolute project directory
func (c *Project) ProjectPath() (string, error) {
	rel := c.RelativeProjectPath
	if rel == "" {
		rel = "."
	}
	path, err := filepath.Abs(rel)
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve project path", goerr.V("path", rel))
	}
	return path, nil
}

// ExportDestination returns where artifacts go when no release is created.
// Cloud Storage URLs are returned unchanged.
func (c *Project) ExportDestination(projectPath string) string {
	rel := c.RelativeExportPath
	if rel == "" {
		rel = defaultExportPath
	}
	if strings.HasPrefix(rel, "gs://") || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(projectPath, rel)
}

// PresetNames returns the selected preset names with blanks removed
func (c *Project) PresetNames() []string {
	var names []string
	for _, name := range c.Presets {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
