package http

import (
	"io"
	"net/http"

	"github.com/Mr-Shodiyorov/admin-page/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
)

// Files serves images kept by the local storage backend.
type Files struct {
	log   hclog.Logger
	store *storage.Local
}

func NewFiles(l hclog.Logger, s *storage.Local) *Files {
	return &Files{log: l, store: s}
}

// GetFile handles GET /images/{bucket}/{path}
func (f *Files) GetFile(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bucket, path := vars["bucket"], vars["path"]

	f.log.Debug("Get image", "bucket", bucket, "path", path)

	file, err := f.store.Get(bucket, path)
	if err != nil {
		f.log.Error("Unable to get the file", "error", err)
		http.Error(rw, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	if mime, err := mimetype.DetectReader(file); err == nil {
		contentType = mime.String()
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		f.log.Error("Unable to rewind file", "error", err)
		http.Error(rw, "Unable to serve the file", http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", contentType)
	rw.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(rw, file); err != nil {
		f.log.Error("Unable to write file to response", "error", err)
	}
}
