package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned when an upload exceeds the configured size.
var ErrTooLarge = errors.New("file exceeds the maximum size")

// Local keeps objects on disk under basePath/bucket/path.
type Local struct {
	maxFileSize int // Maximum number of bytes for files
	basePath    string
	publicURL   string
}

// maxBytesWriter is a writer that errors when more than N bytes are written
type maxBytesWriter struct {
	w io.Writer // underlying writer
	n int       // max bytes remaining
}

func (l *maxBytesWriter) Write(p []byte) (int, error) {
	if len(p) > l.n {
		n, _ := l.w.Write(p[:l.n])
		l.n -= n
		return n, ErrTooLarge
	}
	n, err := l.w.Write(p)
	l.n -= n
	return n, err
}

// NewLocal creates a new Local store. Objects are served back below
// publicURL, maxSize is the max number of bytes a file can be.
func NewLocal(basePath, publicURL string, maxSize int) (*Local, error) {
	p, err := filepath.Abs(basePath)
	if err != nil {
		return nil, err
	}

	return &Local{basePath: p, publicURL: strings.TrimRight(publicURL, "/"), maxFileSize: maxSize}, nil
}

func (l *Local) Upload(ctx context.Context, bucket, path string, contents io.Reader, contentType string) error {
	fp, err := l.fullPath(bucket, path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(fp); err == nil {
		return fmt.Errorf("object %s/%s already exists", bucket, path)
	}

	dir := filepath.Dir(fp)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("unable to create directory: %w", err)
	}

	// write next to the target and rename so readers never see half a file
	tempFile, err := os.CreateTemp(dir, "temp-*")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	writer := &maxBytesWriter{w: tempFile, n: l.maxFileSize}
	if _, err := io.Copy(writer, contents); err != nil {
		tempFile.Close()
		if errors.Is(err, ErrTooLarge) {
			return fmt.Errorf("%w of %d bytes", ErrTooLarge, l.maxFileSize)
		}
		return fmt.Errorf("unable to write to file: %w", err)
	}

	if err = tempFile.Close(); err != nil {
		return fmt.Errorf("unable to close temporary file: %w", err)
	}

	if err := os.Rename(tempPath, fp); err != nil {
		return fmt.Errorf("unable to move temporary file to final location: %w", err)
	}

	return ctx.Err()
}

func (l *Local) PublicURL(bucket, path string) string {
	return l.publicURL + "/images/" + url.PathEscape(bucket) + "/" + path
}

func (l *Local) Delete(ctx context.Context, bucket string, paths ...string) error {
	var errs []error
	for _, p := range paths {
		fp, err := l.fullPath(bucket, p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(fp); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get opens a stored object for reading.
func (l *Local) Get(bucket, path string) (*os.File, error) {
	fp, err := l.fullPath(bucket, path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("unable to open the file: %w", err)
	}

	return f, nil
}

// fullPath resolves bucket and path below the base path, refusing anything
// that would escape it.
func (l *Local) fullPath(bucket, path string) (string, error) {
	fp := filepath.Join(l.basePath, bucket, path)
	rel, err := filepath.Rel(l.basePath, fp)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") || bucket == "" || path == "" {
		return "", fmt.Errorf("invalid object path %q", bucket+"/"+path)
	}
	return fp, nil
}
