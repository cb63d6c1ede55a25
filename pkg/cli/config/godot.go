package config

import (
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v3"
)

const defaultGodotDataPath = "~/.local/share/godot"

// Godot holds where Godot and its export templates come from
type Godot struct {
	ExecutableURL string
	TemplatesURL  string
	WorkingPath   string
	TemplatesPath string
}

// Flags returns CLI flags for Godot setup
func (c *Godot) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "godot-executable-download-url",
			Usage:       "URL of the zipped Godot executable, godot from PATH is used when omitted",
			Destination: &c.ExecutableURL,
			Sources:     envVars("GODOT_EXECUTABLE_DOWNLOAD_URL"),
		},
		&cli.StringFlag{
			Name:        "godot-export-templates-download-url",
			Usage:       "URL of the export templates archive (.tpz)",
			Destination: &c.TemplatesURL,
			Sources:     envVars("GODOT_EXPORT_TEMPLATES_DOWNLOAD_URL"),
		},
		&cli.StringFlag{
			Name:        "godot-working-path",
			Usage:       "Scratch directory for downloads, builds and archives",
			Value:       defaultGodotDataPath,
			Destination: &c.WorkingPath,
			Sources:     envVars("GODOT_WORKING_PATH"),
		},
		&cli.StringFlag{
			Name:        "godot-templates-path",
			Usage:       "Directory Godot reads export templates from (default: export_templates, or templates for Godot 3, under ~/.local/share/godot)",
			Destination: &c.TemplatesPath,
			Sources:     envVars("GODOT_TEMPLATES_PATH"),
		},
	}
}

// ResolveWorkingPath expands ~ in the working path
func (c *Godot) ResolveWorkingPath() (string, error) {
	return expandPath(c.WorkingPath, defaultGodotDataPath)
}

// ResolveTemplatesPath returns the export templates root for the Godot major version
func (c *Godot) ResolveTemplatesPath(godot3 bool) (string, error) {
	if c.TemplatesPath != "" {
		return expandPath(c.TemplatesPath, "")
	}

	dir := "export_templates"
	if godot3 {
		dir = "templates"
	}
	return expandPath(filepath.Join(defaultGodotDataPath, dir), "")
}

func expandPath(path, fallback string) (string, error) {
	if path == "" {
		path = fallback
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to expand path", goerr.V("path", path))
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve path", goerr.V("path", expanded))
	}
	return abs, nil
}
