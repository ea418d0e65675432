package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/Mr-Shodiyorov/admin-page/internal/domain"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, bucket, path string, contents io.Reader, contentType string) error {
	args := m.Called(ctx, bucket, path, contents, contentType)
	return args.Error(0)
}

func (m *MockStorage) PublicURL(bucket, path string) string {
	return fmt.Sprintf("https://cdn/%s/%s", bucket, path)
}

func (m *MockStorage) Delete(ctx context.Context, bucket string, paths ...string) error {
	args := m.Called(ctx, bucket, paths)
	return args.Error(0)
}

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
)

func newImageService(store *MockStorage, cleanup bool) *ImageService {
	s := NewImageService(store, ImageOptions{Bucket: "product-images", MaxBytes: 1024, Cleanup: cleanup}, hclog.NewNullLogger())
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s
}

func images(n int) []domain.ImageFile {
	files := make([]domain.ImageFile, n)
	for i := range files {
		files[i] = domain.ImageFile{Name: fmt.Sprintf("f%d.png", i), Content: pngBytes}
	}
	return files
}

func TestImageService_TakesAtMostCapacity(t *testing.T) {
	store := new(MockStorage)
	store.On("Upload", mock.Anything, "product-images", mock.AnythingOfType("string"), mock.Anything, "image/png").Return(nil)
	s := newImageService(store, true)

	urls, err := s.UploadImages(context.Background(), images(5), 3)
	require.NoError(t, err)
	assert.Len(t, urls, 3)
	store.AssertNumberOfCalls(t, "Upload", 3)

	for _, u := range urls {
		assert.Regexp(t, `^https://cdn/product-images/products/1700000000000-[0-9a-f]{12}\.png$`, u)
	}

	urls, err = s.UploadImages(context.Background(), images(2), 0)
	require.NoError(t, err)
	assert.Empty(t, urls)
	store.AssertNumberOfCalls(t, "Upload", 3)
}

func TestImageService_RejectsNonImagesBeforeUploading(t *testing.T) {
	store := new(MockStorage)
	s := newImageService(store, true)

	files := []domain.ImageFile{
		{Name: "ok.jpg", Content: jpegBytes},
		{Name: "notes.txt", Content: []byte("just some text")},
		{Name: "huge.png", Content: append(append([]byte{}, pngBytes...), make([]byte, 2048)...)},
	}

	_, err := s.UploadImages(context.Background(), files, 3)

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("files[1]"))
	assert.True(t, verrs.Has("files[2]"))
	assert.False(t, verrs.Has("files[0]"))
	store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestImageService_AbortsAtFirstFailure(t *testing.T) {
	testCases := []struct {
		name    string
		cleanup bool
	}{
		{"Cleanup removes stored objects", true},
		{"Orphans are kept", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(MockStorage)
			store.On("Upload", mock.Anything, "product-images", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			store.On("Upload", mock.Anything, "product-images", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("quota exceeded")).Once()
			store.On("Delete", mock.Anything, "product-images", mock.MatchedBy(func(paths []string) bool {
				return len(paths) == 1
			})).Return(nil)
			s := newImageService(store, tc.cleanup)

			urls, err := s.UploadImages(context.Background(), images(3), 3)

			assert.Nil(t, urls)
			var uerr *domain.UploadError
			require.ErrorAs(t, err, &uerr)
			assert.Equal(t, "f1.png", uerr.File)
			assert.Equal(t, 1, uerr.Uploaded)
			store.AssertNumberOfCalls(t, "Upload", 2)
			if tc.cleanup {
				store.AssertNumberOfCalls(t, "Delete", 1)
			} else {
				store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestImageService_ExtensionFromContent(t *testing.T) {
	store := new(MockStorage)
	store.On("Upload", mock.Anything, "product-images", mock.MatchedBy(func(path string) bool {
		return len(path) > 4 && path[len(path)-4:] == ".jpg"
	}), mock.Anything, "image/jpeg").Return(nil).Once()
	s := newImageService(store, false)

	_, err := s.UploadImages(context.Background(), []domain.ImageFile{{Name: "camera-roll", Content: jpegBytes}}, 1)
	require.NoError(t, err)
	store.AssertExpectations(t)
}
