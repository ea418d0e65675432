package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/Mr-Shodiyorov/admin-page/internal/metrics"
	"github.com/Mr-Shodiyorov/admin-page/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/hashicorp/go-hclog"
)

type ImageOptions struct {
	Bucket   string
	MaxBytes int
	// Cleanup deletes the objects already stored by a batch that failed
	Cleanup bool
}

// ImageService stores picked product images one at a time.
type ImageService struct {
	store   storage.Storage
	options ImageOptions
	now     func() time.Time
	logger  hclog.Logger
}

func NewImageService(store storage.Storage, options ImageOptions, logger hclog.Logger) *ImageService {
	return &ImageService{store: store, options: options, now: time.Now, logger: logger}
}

type sniffed struct {
	file domain.ImageFile
	mime *mimetype.MIME
}

// UploadImages stores at most capacity files of the batch and returns their
// public URLs in order. Every file is checked before the first upload; the
// batch stops at the first upload that fails.
func (s *ImageService) UploadImages(ctx context.Context, files []domain.ImageFile, capacity int) ([]string, error) {
	if capacity <= 0 {
		return []string{}, nil
	}
	if len(files) > capacity {
		files = files[:capacity]
	}

	batch, err := s.check(files)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(batch))
	stored := make([]string, 0, len(batch))
	for _, f := range batch {
		path := storage.ObjectPath(objectName(f), s.now())
		s.logger.Debug("Uploading image", "file", f.file.Name, "path", path, "type", f.mime.String())

		err := s.store.Upload(ctx, s.options.Bucket, path, bytes.NewReader(f.file.Content), f.mime.String())
		metrics.RecordUpload(err)
		if err != nil {
			s.logger.Error("Unable to upload image", "file", f.file.Name, "error", err)
			s.discard(stored)
			return nil, &domain.UploadError{File: f.file.Name, Uploaded: len(stored), Err: err}
		}

		stored = append(stored, path)
		urls = append(urls, s.store.PublicURL(s.options.Bucket, path))
	}

	return urls, nil
}

func (s *ImageService) check(files []domain.ImageFile) ([]sniffed, error) {
	var errs domain.ValidationErrors
	batch := make([]sniffed, 0, len(files))
	for i, f := range files {
		field := fmt.Sprintf("files[%d]", i)
		if s.options.MaxBytes > 0 && len(f.Content) > s.options.MaxBytes {
			errs = append(errs, domain.NewValidationError(field, "max", fmt.Sprintf("%s is larger than %d bytes", f.Name, s.options.MaxBytes))...)
			continue
		}

		mime := mimetype.Detect(f.Content)
		if !strings.HasPrefix(mime.String(), "image/") {
			errs = append(errs, domain.NewValidationError(field, "image", fmt.Sprintf("%s is %s, not an image", f.Name, mime.String()))...)
			continue
		}
		batch = append(batch, sniffed{file: f, mime: mime})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return batch, nil
}

// discard removes the objects of a failed batch when cleanup is enabled.
func (s *ImageService) discard(paths []string) {
	if !s.options.Cleanup || len(paths) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Delete(ctx, s.options.Bucket, paths...); err != nil {
		s.logger.Warn("Unable to remove images of failed batch", "paths", paths, "error", err)
	}
}

// objectName falls back to the sniffed extension when the picked file has
// none.
func objectName(f sniffed) string {
	if filepath.Ext(f.file.Name) != "" {
		return f.file.Name
	}
	return f.file.Name + f.mime.Extension()
}
