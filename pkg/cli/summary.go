package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/m-mizutani/gdship/pkg/usecase"
)

var (
	colorOK    = color.New(color.FgGreen, color.Bold)
	colorLabel = color.New(color.FgCyan)
	colorWarn  = color.New(color.FgYellow)
)

// printSummary writes a human readable result of the run
func printSummary(w io.Writer, result *usecase.RunResult, delivery usecase.Delivery) {
	if len(result.Artifacts) == 0 {
		colorWarn.Fprintln(w, "No artifacts exported")
		return
	}

	switch d := delivery.(type) {
	case usecase.PublishRelease:
		colorOK.Fprintf(w, "Released %s\n", result.Release.TagName)
		if result.Release.URL != "" {
			fmt.Fprintf(w, "  %s %s\n", colorLabel.Sprint("url:"), result.Release.URL)
		}
	case usecase.RelocateArtifacts:
		colorOK.Fprintf(w, "Exported %d artifact(s)\n", len(result.Artifacts))
		fmt.Fprintf(w, "  %s %s\n", colorLabel.Sprint("destination:"), d.Destination)
	}

	for _, artifact := range result.Artifacts {
		fmt.Fprintf(w, "  %s %s\n", colorLabel.Sprint(artifact.Name+":"), filepath.Base(artifact.Path))
	}
}
