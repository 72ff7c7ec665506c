package services

import (
	"context"
	"fmt"

	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/store"
)

const (
	DefaultHistoryLimit = 200
	MaxHistoryLimit     = 1000
)

// History reads back a user's saved predictions.
type History struct {
	docs        store.DocumentStore
	collections Collections
}

// NewHistory creates the history service.
func NewHistory(docs store.DocumentStore, collections Collections) *History {
	return &History{docs: docs, collections: collections}
}

// List returns the newest predictions first.
func (h *History) List(ctx context.Context, uid string, limit int) ([]models.PersistedRecord, error) {
	if uid == "" {
		return []models.PersistedRecord{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	docs, err := h.docs.QueryOrdered(ctx, h.collections.PredictionsPath(uid), "createdAt", store.Desc, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load prediction history: %w", err)
	}

	records := make([]models.PersistedRecord, 0, len(docs))
	for _, d := range docs {
		var rec models.PersistedRecord
		if err := d.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode prediction %s: %w", d.ID, err)
		}
		rec.ID = d.ID
		records = append(records, rec)
	}
	return records, nil
}
