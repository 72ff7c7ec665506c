package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/store"
)

// Contact stores messages sent through the public contact form.
type Contact struct {
	docs        store.DocumentStore
	collections Collections
}

// NewContact creates the contact service.
func NewContact(docs store.DocumentStore, collections Collections) *Contact {
	return &Contact{docs: docs, collections: collections}
}

// Submit validates and appends a contact message, returning its document ID.
func (c *Contact) Submit(ctx context.Context, req models.ContactRequest) (string, error) {
	msg := models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return "", ErrMissingFields
	}

	id, err := c.docs.AppendDocument(ctx, c.collections.Contacts, msg)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	slog.Info("Contact message stored.", "documentId", id)
	return id, nil
}
