// Package storage stores product images and hands back their public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage is an object store addressed by bucket and path.
type Storage interface {
	// Upload stores contents at path. Existing objects are not overwritten.
	Upload(ctx context.Context, bucket, path string, contents io.Reader, contentType string) error
	// PublicURL is the address the stored object can be downloaded from.
	PublicURL(bucket, path string) string
	Delete(ctx context.Context, bucket string, paths ...string) error
}

// ObjectPath names a new product image after the upload time and a random
// suffix, keeping the original extension.
func ObjectPath(filename string, now time.Time) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = "jpg"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("products/%d-%s.%s", now.UnixMilli(), suffix, ext)
}
