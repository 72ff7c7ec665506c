// Package store is the document database boundary: per-document reads and
// writes, collection appends and ordered queries.
package store

import (
	"context"
	"errors"
)

// Direction orders query results.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// ErrNotFound is returned by implementations that cannot express absence
// through ReadDocument's boolean.
var ErrNotFound = errors.New("document not found")

// DocumentStore is the contract the portal needs from its document database.
// Collection paths are slash separated, e.g. "users/<uid>/predictions".
type DocumentStore interface {
	WriteDocument(ctx context.Context, collectionPath, id string, data any) error
	// ReadDocument decodes the document into dst and reports whether it exists.
	ReadDocument(ctx context.Context, collectionPath, id string, dst any) (bool, error)
	// AppendDocument adds data under a generated ID and returns that ID.
	AppendDocument(ctx context.Context, collectionPath string, data any) (string, error)
	// QueryOrdered returns up to limit documents ordered by field. A limit of
	// zero or less means no limit.
	QueryOrdered(ctx context.Context, collectionPath, field string, dir Direction, limit int) ([]Document, error)
}

// Document is one query result.
type Document struct {
	ID     string
	dataTo func(any) error
}

// NewDocument builds a Document from an ID and a decoder.
func NewDocument(id string, dataTo func(any) error) Document {
	return Document{ID: id, dataTo: dataTo}
}

// DataTo decodes the document into dst.
func (d Document) DataTo(dst any) error {
	if d.dataTo == nil {
		return errors.New("document has no data")
	}
	return d.dataTo(dst)
}
