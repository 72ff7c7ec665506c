package services

import (
	"context"

	"github.com/Lllllllleong/healthportal/internal/models"
)

// Authenticator is the auth provider surface the portal relies on. It is
// stateless; the session of a caller lives on that caller's
// session.Notifier.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	UpdateDisplayName(ctx context.Context, s *models.Session, name string) error
}

// TokenResolver maps an ID token presented by a caller to its session.
type TokenResolver interface {
	Resume(ctx context.Context, idToken string) (*models.Session, error)
}

// NoteWriter produces a short human-readable note for a prediction.
type NoteWriter interface {
	WriteNote(ctx context.Context, predictionType, label string, confidencePercent *float64) (string, error)
}

// Collections names the document collections the portal writes to.
type Collections struct {
	Users       string
	Predictions string
	Contacts    string
}

// DefaultCollections matches the layout used by the web client.
func DefaultCollections() Collections {
	return Collections{
		Users:       "users",
		Predictions: "predictions",
		Contacts:    "contacts",
	}
}

// PredictionsPath is the per-user result collection, users/<uid>/predictions.
func (c Collections) PredictionsPath(uid string) string {
	return c.Users + "/" + uid + "/" + c.Predictions
}
