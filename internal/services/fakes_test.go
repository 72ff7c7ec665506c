package services

import (
	"context"
	"errors"
	"sync"

	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/session"
)

var errUnavailable = errors.New("service unavailable")

// fakeAuth is an in-memory Authenticator and TokenResolver.
type fakeAuth struct {
	mu           sync.Mutex
	signUpErr    error
	signInErr    error
	updateErr    error
	displayNames map[string]string
	tokens       map[string]*models.Session
	calls        int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		displayNames: map[string]string{},
		tokens:       map[string]*models.Session{},
	}
}

func (f *fakeAuth) SignUp(_ context.Context, email, _ string) (*models.Session, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &models.Session{UID: "uid-" + email, Email: email, IDToken: "token-" + email}, nil
}

func (f *fakeAuth) SignIn(_ context.Context, email, _ string) (*models.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &models.Session{UID: "uid-" + email, Email: email, IDToken: "token-" + email}, nil
}

func (f *fakeAuth) UpdateDisplayName(_ context.Context, s *models.Session, name string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.displayNames[s.UID] = name
	s.DisplayName = name
	return nil
}

func (f *fakeAuth) Resume(_ context.Context, idToken string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.tokens[idToken]
	if !ok {
		return nil, errors.New("session token is invalid or expired")
	}
	return s, nil
}

// fakeNotes records note requests and answers with a fixed note.
type fakeNotes struct {
	err   error
	calls int
}

func (f *fakeNotes) WriteNote(_ context.Context, predictionType, label string, _ *float64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return predictionType + ": " + label, nil
}

func ptr(v float64) *float64 { return &v }

func signedIn(uid string) *session.Notifier {
	n := session.NewNotifier()
	n.Publish(&models.Session{UID: uid, Email: uid + "@example.com"})
	return n
}
