// Package blob is the binary storage boundary: write-once uploads addressed
// by path, and durable retrieval URLs for what was uploaded.
package blob

import (
	"context"
	"errors"
	"net/url"
)

// ErrNotFound is returned when no object exists at a path.
var ErrNotFound = errors.New("blob not found")

// Store is the contract the portal needs from its blob storage.
type Store interface {
	// Upload writes data at path. An object that already exists is kept as is.
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	// RetrievalURL returns a URL that serves the object without further auth.
	RetrievalURL(ctx context.Context, path string) (string, error)
}

// DefaultDownloadHost serves Firebase Storage download-token URLs.
const DefaultDownloadHost = "https://firebasestorage.googleapis.com"

// downloadTokenKey is the object metadata key Firebase Storage reads tokens from.
const downloadTokenKey = "firebaseStorageDownloadTokens"

// DownloadURL builds a Firebase Storage token URL for an object.
func DownloadURL(host, bucket, path, token string) string {
	return host + "/v0/b/" + bucket + "/o/" + url.PathEscape(path) + "?alt=media&token=" + url.QueryEscape(token)
}
