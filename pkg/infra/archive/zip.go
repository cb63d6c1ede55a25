package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Unzip extracts the zip file at src into destDir and returns the extracted entry names
func Unzip(src, destDir string) ([]string, error) {
	zipReader, err := zip.OpenReader(src)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open zip", goerr.V("path", src))
	}
	defer zipReader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create destination directory", goerr.V("path", destDir))
	}

	var extracted []string
	for _, file := range zipReader.File {
		if err := extractFile(file, destDir); err != nil {
			return nil, goerr.Wrap(err, "failed to extract file", goerr.V("name", file.Name))
		}
		extracted = append(extracted, file.Name)
	}

	return extracted, nil
}

// extractFile extracts a single file from ZIP to the destination directory
func extractFile(file *zip.File, destDir string) error {
	// Security check: prevent path traversal attacks
	destPath := filepath.Join(destDir, file.Name)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return goerr.New("invalid file path detected", goerr.V("file", file.Name), goerr.V("dest", destPath))
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(destPath, 0755)
	}

	rc, err := file.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open file in zip", goerr.V("file", file.Name))
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return goerr.Wrap(err, "failed to create parent directories", goerr.V("path", filepath.Dir(destPath)))
	}

	// Keep the executable bit of the Godot binary
	mode := file.FileInfo().Mode().Perm()
	if mode == 0 {
		mode = 0644
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return goerr.Wrap(err, "failed to create destination file", goerr.V("path", destPath))
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, rc); err != nil {
		return goerr.Wrap(err, "failed to copy file content", goerr.V("path", destPath))
	}

	return nil
}

// ZipDir writes every file under dir into a zip at archivePath. Entry names are
// relative to dir, so the archive has no top-level folder.
func ZipDir(archivePath, dir string) error {
	return writeZip(archivePath, func(zw *zip.Writer) error {
		return filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			return addEntry(zw, path, filepath.ToSlash(rel), d)
		})
	})
}

// ZipFile writes a single file into a zip at archivePath
func ZipFile(archivePath, path string) error {
	return writeZip(archivePath, func(zw *zip.Writer) error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		return addEntry(zw, path, filepath.Base(path), fs.FileInfoToDirEntry(info))
	})
}

func writeZip(archivePath string, fill func(zw *zip.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return goerr.Wrap(err, "failed to create archive directory", goerr.V("path", archivePath))
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return goerr.Wrap(err, "failed to create archive", goerr.V("path", archivePath))
	}
	defer file.Close()

	zw := zip.NewWriter(file)
	if err := fill(zw); err != nil {
		_ = zw.Close()
		return goerr.Wrap(err, "failed to write archive", goerr.V("path", archivePath))
	}
	if err := zw.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize archive", goerr.V("path", archivePath))
	}
	return file.Close()
}

func addEntry(zw *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	if info.IsDir() {
		header.Name += "/"
	} else {
		header.Method = zip.Deflate
	}

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = io.Copy(writer, src)
	return err
}
