package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/session"
	"github.com/Lllllllleong/healthportal/internal/store"
)

// ProfileCards builds the profile sidebar for a session.
type ProfileCards struct {
	docs        store.DocumentStore
	collections Collections
}

// NewProfileCards creates the profile card builder.
func NewProfileCards(docs store.DocumentStore, collections Collections) *ProfileCards {
	return &ProfileCards{docs: docs, collections: collections}
}

// Profile reads the stored profile. A read failure counts as no profile.
func (p *ProfileCards) Profile(ctx context.Context, uid string) (*models.UserProfile, bool) {
	var profile models.UserProfile
	ok, err := p.docs.ReadDocument(ctx, p.collections.Users, uid, &profile)
	if err != nil {
		slog.Warn("Failed to read user profile.", "uid", uid, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &profile, true
}

// For returns the card for s, or the signed-out card when s is nil.
func (p *ProfileCards) For(ctx context.Context, s *models.Session) models.ProfileCard {
	if s == nil || s.UID == "" {
		return models.SignedOutCard()
	}
	profile, ok := p.Profile(ctx, s.UID)
	return buildCard(s, profile, ok)
}

func buildCard(s *models.Session, profile *models.UserProfile, hasProfile bool) models.ProfileCard {
	card := models.ProfileCard{UID: s.UID, SignedIn: true, Email: s.Email}
	switch {
	case hasProfile:
		card.Name = profile.FullName()
	case s.DisplayName != "":
		card.Name = s.DisplayName
	default:
		card.Name = "User"
	}
	if hasProfile && profile.Email != "" {
		card.Email = profile.Email
	}
	if hasProfile && profile.Mobileno != "" {
		card.Mobile = "Mobile: " + profile.Mobileno
	}
	card.DisplayName = card.Name
	return card
}

// SessionIdentity is the minimal identity kept for the signed-in user.
type SessionIdentity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// SessionContext follows a session source and keeps the current profile
// card and identity. Its lifetime is that of the ctx passed to Run.
type SessionContext struct {
	cards  *ProfileCards
	render func(models.ProfileCard)

	mu       sync.RWMutex
	card     models.ProfileCard
	identity *SessionIdentity
}

// NewSessionContext creates a context starting signed out. render, if not
// nil, is called with every new card from Run's goroutine.
func NewSessionContext(cards *ProfileCards, render func(models.ProfileCard)) *SessionContext {
	return &SessionContext{
		cards:  cards,
		render: render,
		card:   models.SignedOutCard(),
	}
}

// Run consumes session changes from src until ctx ends.
func (c *SessionContext) Run(ctx context.Context, src session.Source) {
	for ev := range session.Watch(ctx, src) {
		var (
			card     models.ProfileCard
			identity *SessionIdentity
		)
		if ev.SignedIn() {
			card = c.cards.For(ctx, ev.Session)
			identity = &SessionIdentity{
				UID:         ev.Session.UID,
				Email:       ev.Session.Email,
				DisplayName: card.Name,
			}
		} else {
			card = models.SignedOutCard()
		}

		c.mu.Lock()
		c.card = card
		c.identity = identity
		c.mu.Unlock()

		if c.render != nil {
			c.render(card)
		}
	}
}

// Snapshot returns the current card.
func (c *SessionContext) Snapshot() models.ProfileCard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.card
}

// Identity returns the signed-in identity, if any.
func (c *SessionContext) Identity() (SessionIdentity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.identity == nil {
		return SessionIdentity{}, false
	}
	return *c.identity, true
}
