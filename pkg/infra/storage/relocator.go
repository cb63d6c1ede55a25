package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	gcs "cloud.google.com/go/storage"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gdship/pkg/domain/interfaces"
	"github.com/m-mizutani/gdship/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// ObjectWriterFactory opens a writer for an object in Cloud Storage
type ObjectWriterFactory func(ctx context.Context, bucket, object string) (io.WriteCloser, error)

type relocator struct {
	clientOpts      []option.ClientOption
	newObjectWriter ObjectWriterFactory // nil uses a Cloud Storage client
}

// Option configures the relocator
type Option func(*relocator)

// WithObjectWriter replaces the Cloud Storage writer, mainly for tests
func WithObjectWriter(f ObjectWriterFactory) Option {
	return func(r *relocator) {
		r.newObjectWriter = f
	}
}

// WithStorageClientOptions sets options used when a Cloud Storage client is created
func WithStorageClientOptions(opts ...option.ClientOption) Option {
	return func(r *relocator) {
		r.clientOpts = opts
	}
}

// NewRelocator creates a Relocator. Destinations starting with gs:// are
// uploaded to Cloud Storage, anything else is a local directory.
func NewRelocator(opts ...Option) interfaces.Relocator {
	r := &relocator{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Relocate moves every artifact into destination, keeping its base name
func (r *relocator) Relocate(ctx context.Context, artifacts []model.Artifact, destination string) error {
	if destination == "" {
		return goerr.New("relocation destination is empty")
	}

	if bucket, prefix, ok := ParseGCSURL(destination); ok {
		return r.upload(ctx, artifacts, bucket, prefix)
	}
	return moveLocal(ctx, artifacts, destination)
}

// ParseGCSURL splits gs://bucket/prefix. ok is false for other destinations.
func ParseGCSURL(destination string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(destination, gcsScheme)
	if !found {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, strings.Trim(prefix, "/"), true
}

func moveLocal(ctx context.Context, artifacts []model.Artifact, destination string) error {
	logger := ctxlog.From(ctx)

	if err := os.MkdirAll(destination, 0755); err != nil {
		return goerr.Wrap(err, "failed to create destination directory", goerr.V("path", destination))
	}

	for _, artifact := range artifacts {
		target := filepath.Join(destination, filepath.Base(artifact.Path))
		if err := os.RemoveAll(target); err != nil {
			return goerr.Wrap(err, "failed to remove existing target", goerr.V("path", target))
		}
		if err := move(artifact.Path, target); err != nil {
			return goerr.Wrap(err, "failed to move artifact",
				goerr.V("from", artifact.Path),
				goerr.V("to", target),
			)
		}
		logger.Debug("Moved artifact", "name", artifact.Name, "path", target)
	}

	return nil
}

// move renames src to dst and falls back to copy and delete across file systems
func move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := copyTree(src, dst); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0700)
		}
		return copyFile(p, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (r *relocator) upload(ctx context.Context, artifacts []model.Artifact, bucket, prefix string) error {
	logger := ctxlog.From(ctx)

	newWriter := r.newObjectWriter
	if newWriter == nil {
		client, err := gcs.NewClient(ctx, r.clientOpts...)
		if err != nil {
			return goerr.Wrap(err, "failed to create Cloud Storage client")
		}
		defer client.Close()

		newWriter = func(ctx context.Context, bucket, object string) (io.WriteCloser, error) {
			return client.Bucket(bucket).Object(object).NewWriter(ctx), nil
		}
	}

	for _, artifact := range artifacts {
		base := filepath.Dir(artifact.Path)
		err := filepath.WalkDir(artifact.Path, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(base, p)
			if err != nil {
				return err
			}
			object := path.Join(prefix, filepath.ToSlash(rel))
			if err := uploadFile(ctx, newWriter, p, bucket, object); err != nil {
				return err
			}
			logger.Debug("Uploaded artifact file", "bucket", bucket, "object", object)
			return nil
		})
		if err != nil {
			return goerr.Wrap(err, "failed to upload artifact",
				goerr.V("name", artifact.Name),
				goerr.V("bucket", bucket),
			)
		}
	}

	logger.Info("Uploaded artifacts to Cloud Storage", "bucket", bucket, "prefix", prefix, "count", len(artifacts))
	return nil
}

func uploadFile(ctx context.Context, newWriter ObjectWriterFactory, src, bucket, object string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := newWriter(ctx, bucket, object)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, in); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V("object", object))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("object", object))
	}
	return nil
}
