package archive

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
)

// ManifestFile is written next to the archives
const ManifestFile = "manifest.toml"

// Manifest describes one packaging run
type Manifest struct {
	Version     string          `toml:"version,omitempty"`
	GeneratedAt time.Time       `toml:"generated_at"`
	Archives    []ManifestEntry `toml:"archives"`
}

// ManifestEntry describes one archive
type ManifestEntry struct {
	Name     string `toml:"name"`
	Platform string `toml:"platform,omitempty"`
	File     string `toml:"file"`
	SHA256   string `toml:"sha256"`
	Size     int64  `toml:"size"`
}

type packager struct {
	archiveDir string
	now        func() time.Time
}

// NewPackager creates a Packager writing archives into archiveDir
func NewPackager(archiveDir string) interfaces.Packager {
	return &packager{
		archiveDir: archiveDir,
		now:        time.Now,
	}
}

// Package zips every artifact into <archiveDir>/<name>.zip and writes manifest.toml.
// An artifact that already is a .zip file (macOS exports) is copied unchanged.
func (p *packager) Package(ctx context.Context, version string, artifacts []model.Artifact) ([]model.Artifact, error) {
	logger := ctxlog.From(ctx)

	if err := os.MkdirAll(p.archiveDir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create archive directory", goerr.V("path", p.archiveDir))
	}

	manifest := Manifest{
		Version:     version,
		GeneratedAt: p.now().UTC(),
	}

	archives := make([]model.Artifact, 0, len(artifacts))
	for _, artifact := range artifacts {
		archivePath := filepath.Join(p.archiveDir, artifact.Name+".zip")

		info, err := os.Stat(artifact.Path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to stat artifact", goerr.V("path", artifact.Path))
		}

		switch {
		case info.IsDir():
			err = ZipDir(archivePath, artifact.Path)
		case strings.EqualFold(filepath.Ext(artifact.Path), ".zip"):
			err = copyFile(artifact.Path, archivePath)
		default:
			err = ZipFile(archivePath, artifact.Path)
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to archive artifact", goerr.V("name", artifact.Name))
		}

		entry, err := newManifestEntry(artifact, archivePath)
		if err != nil {
			return nil, err
		}
		manifest.Archives = append(manifest.Archives, entry)

		logger.Info("Archived artifact",
			"name", artifact.Name,
			"archive", archivePath,
			"size_bytes", entry.Size,
		)

		archives = append(archives, model.Artifact{
			Name:     artifact.Name,
			Path:     archivePath,
			Platform: artifact.Platform,
		})
	}

	if err := WriteManifest(filepath.Join(p.archiveDir, ManifestFile), &manifest); err != nil {
		return nil, err
	}

	return archives, nil
}

// WriteManifest encodes manifest as TOML into path
func WriteManifest(path string, manifest *Manifest) error {
	data, err := toml.Marshal(manifest)
	if err != nil {
		return goerr.Wrap(err, "failed to encode manifest")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return goerr.Wrap(err, "failed to write manifest", goerr.V("path", path))
	}
	return nil
}

// ReadManifest decodes a manifest written by WriteManifest
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read manifest", goerr.V("path", path))
	}
	var manifest Manifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, goerr.Wrap(err, "failed to decode manifest", goerr.V("path", path))
	}
	return &manifest, nil
}

func newManifestEntry(artifact model.Artifact, archivePath string) (ManifestEntry, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return ManifestEntry{}, goerr.Wrap(err, "failed to open archive", goerr.V("path", archivePath))
	}
	defer file.Close()

	h := sha256.New()
	size, err := io.Copy(h, file)
	if err != nil {
		return ManifestEntry{}, goerr.Wrap(err, "failed to hash archive", goerr.V("path", archivePath))
	}

	return ManifestEntry{
		Name:     artifact.Name,
		Platform: artifact.Platform,
		File:     filepath.Base(archivePath),
		SHA256:   hex.EncodeToString(h.Sum(nil)),
		Size:     size,
	}, nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}
