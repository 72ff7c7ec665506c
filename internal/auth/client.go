// Package auth adapts Firebase Authentication's email/password REST surface
// to the portal's session model.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Lllllllleong/healthportal/internal/models"
	"google.golang.org/api/identitytoolkit/v3"
)

// Client signs users up and in and resolves ID tokens. It keeps no session
// state: each caller tracks its own session, typically on a
// session.Notifier, so one process can serve many users at once.
type Client struct {
	svc *identitytoolkit.Service
	now func() time.Time
}

// NewClient wraps an Identity Toolkit service.
func NewClient(svc *identitytoolkit.Service) *Client {
	return &Client{
		svc: svc,
		now: time.Now,
	}
}

// SignUp creates an email/password account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*models.Session, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}
	resp, err := c.svc.Relyingparty.SignupNewUser(req).Context(ctx).Do()
	if err != nil {
		return nil, translate("sign up", err)
	}

	s := &models.Session{
		UID:          resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    c.expiry(resp.ExpiresIn),
	}
	slog.Info("Account created.", "uid", s.UID)
	return s, nil
}

// SignIn verifies an email/password pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}
	resp, err := c.svc.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	if err != nil {
		return nil, translate("sign in", err)
	}

	s := &models.Session{
		UID:          resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    c.expiry(resp.ExpiresIn),
	}
	slog.Info("Signed in.", "uid", s.UID)
	return s, nil
}

// UpdateDisplayName sets the account's display name and updates s.
func (c *Client) UpdateDisplayName(ctx context.Context, s *models.Session, name string) error {
	if s == nil || s.IDToken == "" {
		return fmt.Errorf("update display name: %w", ErrInvalidToken)
	}
	req := &identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		IdToken:     s.IDToken,
		DisplayName: name,
	}
	if _, err := c.svc.Relyingparty.SetAccountInfo(req).Context(ctx).Do(); err != nil {
		return translate("update display name", err)
	}
	s.DisplayName = name
	return nil
}

// Resume looks up the account behind an ID token.
func (c *Client) Resume(ctx context.Context, idToken string) (*models.Session, error) {
	if idToken == "" {
		return nil, fmt.Errorf("resume session: %w", ErrInvalidToken)
	}
	req := &identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		IdToken: idToken,
	}
	resp, err := c.svc.Relyingparty.GetAccountInfo(req).Context(ctx).Do()
	if err != nil {
		return nil, translate("resume session", err)
	}
	if len(resp.Users) == 0 || resp.Users[0].LocalId == "" {
		return nil, fmt.Errorf("resume session: %w", ErrInvalidToken)
	}
	u := resp.Users[0]
	if u.Disabled {
		return nil, fmt.Errorf("resume session: %w", ErrUserDisabled)
	}
	return &models.Session{
		UID:         u.LocalId,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		IDToken:     idToken,
	}, nil
}

func (c *Client) expiry(expiresIn int64) time.Time {
	if expiresIn <= 0 {
		return time.Time{}
	}
	return c.now().Add(time.Duration(expiresIn) * time.Second)
}
