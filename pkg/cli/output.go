package cli

import (
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
)

// outputPair is one key=value line of a GitHub Actions step output
type outputPair struct {
	key   string
	value string
}

// writeGitHubOutput appends step outputs to the file named by GITHUB_OUTPUT.
// Nothing is written outside GitHub Actions.
func writeGitHubOutput(pairs ...outputPair) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return goerr.Wrap(err, "failed to open GitHub output file", goerr.V("path", path))
	}
	defer f.Close()

	for _, p := range pairs {
		if _, err := fmt.Fprintf(f, "%s=%s\n", p.key, p.value); err != nil {
			return goerr.Wrap(err, "failed to write GitHub output", goerr.V("key", p.key))
		}
	}
	return f.Close()
}
