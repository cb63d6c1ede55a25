package godot

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/gdship/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// ExporterConfig controls how presets are exported
type ExporterConfig struct {
	ProjectPath string   // Directory holding project.godot
	BuildPath   string   // Builds land in <BuildPath>/<preset name>/
	Presets     []string // Preset names to export, empty exports all
	Debug       bool     // Use --export-debug
	Verbose     bool
	Godot3      bool // Godot 3 command line flavour
	Concurrency int  // Parallel preset exports, default 1
}

type exporter struct {
	cfg ExporterConfig
}

// NewExporter creates an Exporter invoking the Godot executable
func NewExporter(cfg ExporterConfig) interfaces.Exporter {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &exporter{cfg: cfg}
}

// Export exports every selected preset and returns one artifact per preset in
// preset order. Presets without an export path are skipped. The first failing
// preset fails the whole export.
func (x *exporter) Export(ctx context.Context, executable string) ([]model.Artifact, error) {
	logger := ctxlog.From(ctx)

	presets, err := LoadPresets(filepath.Join(x.cfg.ProjectPath, model.ExportPresetsFile))
	if err != nil {
		return nil, err
	}
	presets, err = FilterPresets(presets, x.cfg.Presets)
	if err != nil {
		return nil, err
	}

	var runnable []model.ExportPreset
	for _, preset := range presets {
		if strings.TrimSpace(preset.ExportPath) == "" {
			logger.Warn("Skipping preset without export path", "preset", preset.Name)
			continue
		}
		runnable = append(runnable, preset)
	}
	if len(runnable) == 0 {
		return nil, nil
	}

	if !x.cfg.Godot3 {
		if err := x.importProject(ctx, executable); err != nil {
			return nil, err
		}
	}

	artifacts := make([]model.Artifact, len(runnable))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(x.cfg.Concurrency)

	for i, preset := range runnable {
		eg.Go(func() error {
			return async.Recover(egCtx, func(ctx context.Context) error {
				artifact, err := x.exportPreset(ctx, executable, preset)
				if err != nil {
					return err
				}
				artifacts[i] = *artifact
				return nil
			})
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return artifacts, nil
}

// importProject runs the editor import so that exports do not miss resources
// on a fresh checkout without a .godot directory
func (x *exporter) importProject(ctx context.Context, executable string) error {
	args := []string{"--headless", "--import"}
	if x.cfg.Verbose {
		args = append(args, "--verbose")
	}
	if err := x.run(ctx, executable, args); err != nil {
		return goerr.Wrap(err, "failed to import project")
	}
	return nil
}

func (x *exporter) exportPreset(ctx context.Context, executable string, preset model.ExportPreset) (*model.Artifact, error) {
	logger := ctxlog.From(ctx)

	buildDir := filepath.Join(x.cfg.BuildPath, sanitizeName(preset.Name))
	if err := os.RemoveAll(buildDir); err != nil {
		return nil, goerr.Wrap(err, "failed to clean build directory", goerr.V("path", buildDir))
	}
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create build directory", goerr.V("path", buildDir))
	}

	outputPath := filepath.Join(buildDir, filepath.Base(filepath.FromSlash(preset.ExportPath)))

	logger.Info("Exporting preset",
		"preset", preset.Name,
		"platform", preset.Platform,
		"output", outputPath,
	)

	if err := x.run(ctx, executable, x.exportArgs(preset.Name, outputPath)); err != nil {
		return nil, goerr.Wrap(err, "failed to export preset", goerr.V("preset", preset.Name))
	}

	artifact := &model.Artifact{
		Name:     sanitizeName(preset.Name),
		Path:     buildDir,
		Platform: preset.Platform,
	}
	// macOS exports are already zipped by Godot; ship that file as is
	if preset.IsMacOS() && strings.EqualFold(filepath.Ext(outputPath), ".zip") {
		artifact.Path = outputPath
	}

	return artifact, nil
}

func (x *exporter) exportArgs(preset, outputPath string) []string {
	var args []string
	switch {
	case x.cfg.Godot3 && x.cfg.Debug:
		args = []string{"--no-window", "--export-debug"}
	case x.cfg.Godot3:
		args = []string{"--no-window", "--export"}
	case x.cfg.Debug:
		args = []string{"--headless", "--export-debug"}
	default:
		args = []string{"--headless", "--export-release"}
	}
	args = append(args, preset, outputPath)
	if x.cfg.Verbose {
		args = append(args, "--verbose")
	}
	return args
}

func (x *exporter) run(ctx context.Context, executable string, args []string) error {
	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Dir = x.cfg.ProjectPath
	out, err := cmd.CombinedOutput()

	ctxlog.From(ctx).Debug("Godot finished",
		"args", args,
		"output", string(out),
	)

	if err != nil {
		return goerr.Wrap(err, "godot command failed",
			goerr.V("args", args),
			goerr.V("output", strings.TrimSpace(string(out))),
		)
	}
	return nil
}

// sanitizeName makes a preset name usable as a file name
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
