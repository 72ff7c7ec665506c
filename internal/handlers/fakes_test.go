package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/Lllllllleong/healthportal/internal/auth"
	"github.com/Lllllllleong/healthportal/internal/blob"
	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/services"
	"github.com/Lllllllleong/healthportal/internal/store"
)

// fakeAuth accepts any sign-up, signs in with password "secret123" and
// resolves the tokens it was given.
type fakeAuth struct {
	tokens      map[string]*models.Session
	resumeDelay time.Duration
	signUpErr   error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		tokens: map[string]*models.Session{
			"good-token": {UID: "u1", Email: "ada@example.com", DisplayName: "Ada Lovelace"},
		},
	}
}

func (f *fakeAuth) SignUp(_ context.Context, email, _ string) (*models.Session, error) {
	if f.signUpErr != nil {
		return nil, fmt.Errorf("sign up: %w", f.signUpErr)
	}
	return &models.Session{UID: "uid-" + email, Email: email, IDToken: "token-" + email}, nil
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*models.Session, error) {
	if password != "secret123" {
		return nil, fmt.Errorf("sign in: %w", auth.ErrInvalidCredentials)
	}
	return &models.Session{
		UID:          "uid-" + email,
		Email:        email,
		IDToken:      "id-token",
		RefreshToken: "refresh-token",
		ExpiresAt:    time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeAuth) UpdateDisplayName(_ context.Context, s *models.Session, name string) error {
	s.DisplayName = name
	return nil
}

func (f *fakeAuth) Resume(ctx context.Context, idToken string) (*models.Session, error) {
	if f.resumeDelay > 0 {
		select {
		case <-time.After(f.resumeDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s, ok := f.tokens[idToken]
	if !ok {
		return nil, fmt.Errorf("resume session: %w", auth.ErrInvalidToken)
	}
	return s, nil
}

type fixture struct {
	auth     *fakeAuth
	docs     *store.Memory
	blobs    *blob.Memory
	handlers *Handlers
}

func newFixture() *fixture {
	f := &fixture{
		auth:  newFakeAuth(),
		docs:  store.NewMemory(),
		blobs: blob.NewMemory("http://blob.local"),
	}
	portal := services.Assemble(f.auth, f.docs, f.blobs, services.PortalConfig{SessionWait: 200 * time.Millisecond})
	f.handlers = New(portal)
	return f
}
