package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/healthportal/internal/gcp"
	"github.com/google/uuid"
)

// GCS implements Store on a Cloud Storage bucket shared with Firebase Storage.
type GCS struct {
	bucket       *storage.BucketHandle
	bucketName   string
	downloadHost string
}

// NewGCS returns a Store backed by bucketName.
func NewGCS(client *storage.Client, bucketName string) *GCS {
	return &GCS{
		bucket:       client.Bucket(bucketName),
		bucketName:   bucketName,
		downloadHost: DefaultDownloadHost,
	}
}

func (g *GCS) Upload(ctx context.Context, path string, data []byte, contentType string) error {
	metadata := map[string]string{downloadTokenKey: uuid.NewString()}
	if _, err := gcp.SaveToGCSAtomically(ctx, g.bucket, path, data, contentType, metadata); err != nil {
		return fmt.Errorf("failed to upload gs://%s/%s: %w", g.bucketName, path, err)
	}
	return nil
}

func (g *GCS) RetrievalURL(ctx context.Context, path string) (string, error) {
	obj := g.bucket.Object(path)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", fmt.Errorf("gs://%s/%s: %w", g.bucketName, path, ErrNotFound)
		}
		return "", fmt.Errorf("failed to read attributes of gs://%s/%s: %w", g.bucketName, path, err)
	}

	token := firstToken(attrs.Metadata[downloadTokenKey])
	if token == "" {
		// Objects written outside the portal carry no token; mint one.
		token = uuid.NewString()
		metadata := attrs.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadata[downloadTokenKey] = token
		update := storage.ObjectAttrsToUpdate{Metadata: metadata}
		if _, err := obj.If(storage.Conditions{MetagenerationMatch: attrs.Metageneration}).Update(ctx, update); err != nil {
			return "", fmt.Errorf("failed to add download token to gs://%s/%s: %w", g.bucketName, path, err)
		}
	}
	return DownloadURL(g.downloadHost, g.bucketName, path, token), nil
}

func firstToken(tokens string) string {
	first, _, _ := strings.Cut(tokens, ",")
	return strings.TrimSpace(first)
}
