package godot

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/gdship/pkg/infra/archive"
	"github.com/m-mizutani/goerr/v2"
)

var lookPath = exec.LookPath

// InstallerConfig holds download locations and target directories
type InstallerConfig struct {
	WorkingPath   string // Downloads and the extracted executable go here
	ExecutableURL string // Zip holding the Godot executable. Empty uses godot from PATH.
	TemplatesURL  string // Export templates .tpz/.zip. Empty skips template installation.
	TemplatesRoot string // e.g. ~/.local/share/godot/export_templates
	RetryMax      int
}

type installer struct {
	cfg        InstallerConfig
	httpClient *retryablehttp.Client
}

// NewInstaller creates an Installer downloading Godot and its export templates
func NewInstaller(cfg InstallerConfig) interfaces.Installer {
	httpClient := retryablehttp.NewClient()
	httpClient.Logger = nil
	if cfg.RetryMax > 0 {
		httpClient.RetryMax = cfg.RetryMax
	}

	return &installer{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

// Install downloads and extracts the Godot executable and export templates, and
// returns the path of the executable
func (x *installer) Install(ctx context.Context) (string, error) {
	logger := ctxlog.From(ctx)

	executable, err := x.installExecutable(ctx)
	if err != nil {
		return "", err
	}
	logger.Info("Godot executable ready", "path", executable)

	if x.cfg.TemplatesURL == "" {
		logger.Info("No export templates URL configured, using installed templates")
		return executable, nil
	}

	templatesDir, err := x.installTemplates(ctx)
	if err != nil {
		return "", err
	}
	logger.Info("Export templates ready", "path", templatesDir)

	return executable, nil
}

func (x *installer) installExecutable(ctx context.Context) (string, error) {
	if x.cfg.ExecutableURL == "" {
		path, err := lookPath("godot")
		if err != nil {
			return "", goerr.Wrap(err, "godot not found in PATH and no executable download URL configured")
		}
		return path, nil
	}

	zipPath := filepath.Join(x.cfg.WorkingPath, "downloads", "godot.zip")
	if err := x.download(ctx, x.cfg.ExecutableURL, zipPath); err != nil {
		return "", err
	}

	destDir := filepath.Join(x.cfg.WorkingPath, "executable")
	if err := os.RemoveAll(destDir); err != nil {
		return "", goerr.Wrap(err, "failed to clean executable directory", goerr.V("path", destDir))
	}
	if _, err := archive.Unzip(zipPath, destDir); err != nil {
		return "", goerr.Wrap(err, "failed to extract Godot executable")
	}

	executable, err := findExecutable(destDir)
	if err != nil {
		return "", err
	}
	if err := os.Chmod(executable, 0755); err != nil {
		return "", goerr.Wrap(err, "failed to make Godot executable", goerr.V("path", executable))
	}

	return executable, nil
}

// installTemplates extracts the templates archive and moves its templates/ folder
// to <TemplatesRoot>/<version>, where version is read from templates/version.txt
func (x *installer) installTemplates(ctx context.Context) (string, error) {
	zipPath := filepath.Join(x.cfg.WorkingPath, "downloads", "templates.zip")
	if err := x.download(ctx, x.cfg.TemplatesURL, zipPath); err != nil {
		return "", err
	}

	extractDir := filepath.Join(x.cfg.WorkingPath, "templates")
	if err := os.RemoveAll(extractDir); err != nil {
		return "", goerr.Wrap(err, "failed to clean templates directory", goerr.V("path", extractDir))
	}
	if _, err := archive.Unzip(zipPath, extractDir); err != nil {
		return "", goerr.Wrap(err, "failed to extract export templates")
	}

	srcDir := filepath.Join(extractDir, "templates")
	raw, err := os.ReadFile(filepath.Join(srcDir, "version.txt"))
	if err != nil {
		return "", goerr.Wrap(err, "export templates archive has no templates/version.txt")
	}
	version := strings.TrimSpace(string(raw))
	if version == "" {
		return "", goerr.New("export templates version.txt is empty")
	}

	destDir := filepath.Join(x.cfg.TemplatesRoot, version)
	if err := os.MkdirAll(filepath.Dir(destDir), 0755); err != nil {
		return "", goerr.Wrap(err, "failed to create templates root", goerr.V("path", x.cfg.TemplatesRoot))
	}
	if err := os.RemoveAll(destDir); err != nil {
		return "", goerr.Wrap(err, "failed to remove previous templates", goerr.V("path", destDir))
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		return "", goerr.Wrap(err, "failed to install export templates", goerr.V("path", destDir))
	}

	return destDir, nil
}

func (x *installer) download(ctx context.Context, url, dest string) error {
	logger := ctxlog.From(ctx)
	logger.Info("Downloading", "url", url, "dest", dest)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create download request", goerr.V("url", url))
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to download", goerr.V("url", url))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return goerr.New("unexpected status code",
			goerr.V("url", url),
			goerr.V("status", resp.StatusCode),
		)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return goerr.Wrap(err, "failed to create download directory", goerr.V("path", dest))
	}

	file, err := os.Create(dest)
	if err != nil {
		return goerr.Wrap(err, "failed to create download file", goerr.V("path", dest))
	}
	defer file.Close()

	size, err := io.Copy(file, resp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to write download", goerr.V("path", dest))
	}

	logger.Debug("Downloaded", "url", url, "size_bytes", size)
	return file.Close()
}

// findExecutable returns the Godot binary in dir. Release zips hold a single
// file such as Godot_v4.2.1-stable_linux.x86_64; macOS bundles are not supported.
func findExecutable(dir string) (string, error) {
	var found string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || found != "" {
			return nil
		}
		name := strings.ToLower(d.Name())
		if strings.Contains(name, "godot") && !strings.HasSuffix(name, ".txt") && !strings.HasSuffix(name, ".zip") {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to search Godot executable", goerr.V("path", dir))
	}
	if found == "" {
		return "", goerr.New("Godot executable not found in archive", goerr.V("path", dir))
	}
	return found, nil
}
