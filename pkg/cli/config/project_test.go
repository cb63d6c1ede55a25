package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/gdship/pkg/cli/config"
)

func TestProject_ExportDestination(t *testing.T) {
	tests := []struct {
		name string
		rel  string
		want string
	}{
		{name: "default", rel: "", want: filepath.Join("/src/game", "export")},
		{name: "relative", rel: "dist/linux", want: filepath.Join("/src/game", "dist/linux")},
		{name: "absolute", rel: "/srv/builds", want: "/srv/builds"},
		{name: "cloud storage", rel: "gs://builds/game", want: "gs://builds/game"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Project{RelativeExportPath: tt.rel}
			gt.Value(t, cfg.ExportDestination("/src/game")).Equal(tt.want)
		})
	}
}

func TestProject_ProjectPath(t *testing.T) {
	wd, err := os.Getwd()
	gt.NoError(t, err)

	cfg := config.Project{RelativeProjectPath: "./"}
	path, err := cfg.ProjectPath()
	gt.NoError(t, err)
	gt.Value(t, path).Equal(wd)

	cfg = config.Project{RelativeProjectPath: "game"}
	path, err = cfg.ProjectPath()
	gt.NoError(t, err)
	gt.Value(t, path).Equal(filepath.Join(wd, "game"))
}

func TestProject_PresetNames(t *testing.T) {
	cfg := config.Project{Presets: []string{" Linux", "", "Web ", "  "}}
	gt.Value(t, cfg.PresetNames()).Equal([]string{"Linux", "Web"})

	cfg = config.Project{}
	gt.A(t, cfg.PresetNames()).Length(0)
}
