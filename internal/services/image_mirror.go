package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Lllllllleong/healthportal/internal/blob"
)

// maxMirrorBytes caps the size of an image copied into blob storage.
const maxMirrorBytes = 20 << 20

// ImageMirror copies images served elsewhere into blob storage.
type ImageMirror struct {
	client *http.Client
	blobs  blob.Store
}

// NewImageMirror creates a mirror fetching with client. A nil client gets a
// 30 second timeout.
func NewImageMirror(client *http.Client, blobs blob.Store) *ImageMirror {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ImageMirror{client: client, blobs: blobs}
}

// UploadFromURL fetches sourceURL, uploads the bytes to destPath and returns
// the stored object's retrieval URL. Any failure is logged and reported as
// ("", false) so callers can carry on without an image.
func (m *ImageMirror) UploadFromURL(ctx context.Context, sourceURL, destPath string) (string, bool) {
	if sourceURL == "" {
		return "", false
	}
	logCtx := slog.With("sourceUrl", sourceURL, "destPath", destPath)

	data, contentType, err := m.fetch(ctx, sourceURL)
	if err != nil {
		logCtx.Warn("Image fetch failed.", "error", err)
		return "", false
	}
	if err := m.blobs.Upload(ctx, destPath, data, contentType); err != nil {
		logCtx.Warn("Image upload failed.", "error", err)
		return "", false
	}
	url, err := m.blobs.RetrievalURL(ctx, destPath)
	if err != nil {
		logCtx.Warn("Could not obtain retrieval URL for uploaded image.", "error", err)
		return "", false
	}
	return url, true
}

func (m *ImageMirror) fetch(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid source url: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch failed %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMirrorBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > maxMirrorBytes {
		return nil, "", fmt.Errorf("image larger than %d bytes", maxMirrorBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
