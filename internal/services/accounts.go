package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/session"
	"github.com/Lllllllleong/healthportal/internal/store"
)

var (
	ErrMissingFields    = errors.New("please fill all fields")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Accounts handles registration, login and logout.
type Accounts struct {
	auth        Authenticator
	docs        store.DocumentStore
	collections Collections
}

// NewAccounts creates the account service.
func NewAccounts(auth Authenticator, docs store.DocumentStore, collections Collections) *Accounts {
	return &Accounts{auth: auth, docs: docs, collections: collections}
}

// Register creates the account, stores the profile document and sets the
// display name to "first last". The new session is published on sessions
// when it is not nil.
func (a *Accounts) Register(ctx context.Context, sessions *session.Notifier, req models.RegisterRequest) (*models.Session, error) {
	profile := models.UserProfile{
		Firstname: strings.TrimSpace(req.Firstname),
		Lastname:  strings.TrimSpace(req.Lastname),
		Mobileno:  strings.TrimSpace(req.Mobileno),
		Email:     strings.TrimSpace(req.Email),
	}
	if profile.Firstname == "" || profile.Lastname == "" || profile.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	s, err := a.auth.SignUp(ctx, profile.Email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	logCtx := slog.With("uid", s.UID)

	if err := a.docs.WriteDocument(ctx, a.collections.Users, s.UID, profile); err != nil {
		logCtx.Error("Failed to store user profile", "error", err)
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	if err := a.auth.UpdateDisplayName(ctx, s, profile.FullName()); err != nil {
		logCtx.Error("Failed to set display name", "error", err)
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	logCtx.Info("Registration complete.")
	if sessions != nil {
		sessions.Publish(s)
	}
	return s, nil
}

// Login signs the user in with email and password and publishes the session
// on sessions when it is not nil.
func (a *Accounts) Login(ctx context.Context, sessions *session.Notifier, req models.LoginRequest) (*models.Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	s, err := a.auth.SignIn(ctx, email, req.Password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	if sessions != nil {
		sessions.Publish(s)
	}
	return s, nil
}

// Logout ends the session held on sessions. ID tokens stay valid until they
// expire; revoking them needs admin credentials.
func (a *Accounts) Logout(ctx context.Context, sessions *session.Notifier) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	if current := sessions.Current(); current != nil {
		slog.Info("Signed out.", "uid", current.UID)
	}
	sessions.Publish(nil)
	return nil
}
