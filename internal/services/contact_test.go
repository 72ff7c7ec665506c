package services

import (
	"context"
	"testing"

	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContact_Submit(t *testing.T) {
	docs := store.NewMemory()
	c := NewContact(docs, DefaultCollections())

	id, err := c.Submit(context.Background(), models.ContactRequest{Name: "Ada", Email: "ada@example.com", Message: " Hello "})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	stored := docs.Collection("contacts")
	require.Len(t, stored, 1)
	msg := stored[0].(models.ContactMessage)
	assert.Equal(t, "Hello", msg.Message)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestContact_SubmitValidation(t *testing.T) {
	docs := store.NewMemory()
	c := NewContact(docs, DefaultCollections())

	_, err := c.Submit(context.Background(), models.ContactRequest{Name: "Ada", Email: "ada@example.com"})

	require.ErrorIs(t, err, ErrMissingFields)
	assert.Empty(t, docs.Collection("contacts"))
}

func TestContact_SubmitStoreFailure(t *testing.T) {
	docs := store.NewMemory()
	docs.AppendHook = func(string, any) error { return errUnavailable }
	c := NewContact(docs, DefaultCollections())

	_, err := c.Submit(context.Background(), models.ContactRequest{Name: "Ada", Email: "a@b.c", Message: "hi"})

	require.ErrorIs(t, err, errUnavailable)
	assert.Contains(t, err.Error(), "failed to send message")
}
