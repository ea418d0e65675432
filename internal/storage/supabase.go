package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Mr-Shodiyorov/admin-page/internal/supabase"
)

const objectPath = "/storage/v1/object/"

// Supabase talks to the hosted object storage API.
type Supabase struct {
	client *supabase.Client
}

func NewSupabase(client *supabase.Client) *Supabase {
	return &Supabase{client: client}
}

func (s *Supabase) Upload(ctx context.Context, bucket, path string, contents io.Reader, contentType string) error {
	req, err := s.client.NewRequest(ctx, http.MethodPost, objectPath+escape(bucket, path), contents)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	if err := s.client.DoJSON(req, nil); err != nil {
		return fmt.Errorf("unable to upload %s/%s: %w", bucket, path, err)
	}
	return nil
}

func (s *Supabase) PublicURL(bucket, path string) string {
	return s.client.BaseURL() + objectPath + "public/" + escape(bucket, path)
}

// Delete removes objects in one call. Missing objects are not an error.
func (s *Supabase) Delete(ctx context.Context, bucket string, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	body := struct {
		Prefixes []string `json:"prefixes"`
	}{Prefixes: paths}
	req, err := s.client.NewRequest(ctx, http.MethodDelete, objectPath+url.PathEscape(bucket), body)
	if err != nil {
		return err
	}

	if err := s.client.DoJSON(req, nil); err != nil {
		return fmt.Errorf("unable to delete from %s: %w", bucket, err)
	}
	return nil
}

func escape(bucket, path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}
