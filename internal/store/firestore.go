package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore implements DocumentStore on Cloud Firestore.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore wraps an existing client.
func NewFirestore(client *firestore.Client) *Firestore {
	return &Firestore{client: client}
}

func (f *Firestore) WriteDocument(ctx context.Context, collectionPath, id string, data any) error {
	if _, err := f.client.Collection(collectionPath).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", collectionPath, id, err)
	}
	return nil
}

func (f *Firestore) ReadDocument(ctx context.Context, collectionPath, id string, dst any) (bool, error) {
	snap, err := f.client.Collection(collectionPath).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to read %s/%s: %w", collectionPath, id, err)
	}
	if !snap.Exists() {
		return false, nil
	}
	if err := snap.DataTo(dst); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", collectionPath, id, err)
	}
	return true, nil
}

func (f *Firestore) AppendDocument(ctx context.Context, collectionPath string, data any) (string, error) {
	docRef, _, err := f.client.Collection(collectionPath).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("failed to append to %s: %w", collectionPath, err)
	}
	return docRef.ID, nil
}

func (f *Firestore) QueryOrdered(ctx context.Context, collectionPath, field string, dir Direction, limit int) ([]Document, error) {
	fsDir := firestore.Asc
	if dir == Desc {
		fsDir = firestore.Desc
	}
	query := f.client.Collection(collectionPath).OrderBy(field, fsDir)
	if limit > 0 {
		query = query.Limit(limit)
	}

	it := query.Documents(ctx)
	defer it.Stop()

	var docs []Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", collectionPath, err)
		}
		docs = append(docs, NewDocument(snap.Ref.ID, snap.DataTo))
	}
	return docs, nil
}
