package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/services"
	"github.com/Lllllllleong/healthportal/internal/session"
)

// Handlers serves the portal's HTTP functions over a Portal.
type Handlers struct {
	portal *services.Portal
	now    func() time.Time
}

// New creates the handlers.
func New(portal *services.Portal) *Handlers {
	return &Handlers{portal: portal, now: time.Now}
}

// Register creates an account and its profile.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	s, err := h.portal.Accounts.Register(r.Context(), nil, req)
	if err != nil {
		slog.Warn("Registration rejected", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		Status:      "success",
		UID:         s.UID,
		DisplayName: s.DisplayName,
	})
}

// Login exchanges email and password for tokens.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	s, err := h.portal.Accounts.Login(r.Context(), nil, req)
	if err != nil {
		slog.Warn("Login rejected", "error", err)
		writeError(w, err)
		return
	}
	var expiresIn int64
	if !s.ExpiresAt.IsZero() {
		expiresIn = int64(s.ExpiresAt.Sub(h.now()).Seconds())
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{
		Status:       "success",
		UID:          s.UID,
		Email:        s.Email,
		DisplayName:  s.DisplayName,
		IDToken:      s.IDToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    max(expiresIn, 0),
	})
}

// Contact stores a contact form message.
func (h *Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req models.ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if _, err := h.portal.Contact.Submit(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.StatusResponse{Status: "success", Message: "Message sent successfully!"})
}

// Logout ends the caller's session.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	s, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sessions := session.NewNotifier()
	sessions.Publish(s)
	if err := h.portal.Accounts.Logout(r.Context(), sessions); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "success", Message: "Signed out."})
}

// Profile returns the profile card of the caller. Without a token the
// signed-out card is returned.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	sessions := session.NewNotifier()
	if _, ok := bearerToken(r); ok {
		s, err := h.resolve(r)
		if err != nil {
			writeError(w, err)
			return
		}
		sessions.Publish(s)
	}
	writeJSON(w, http.StatusOK, h.profileCard(r.Context(), sessions))
}

// profileCard runs a SessionContext over sessions until it has rendered the
// current state, then returns that card.
func (h *Handlers) profileCard(ctx context.Context, sessions session.Source) models.ProfileCard {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rendered := make(chan struct{}, 1)
	sc := services.NewSessionContext(h.portal.Cards, func(models.ProfileCard) {
		select {
		case rendered <- struct{}{}:
		default:
		}
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		sc.Run(ctx, sessions)
	}()

	select {
	case <-rendered:
	case <-ctx.Done():
	}
	cancel()
	<-done
	return sc.Snapshot()
}

// SavePredictions persists a prediction result for the caller. The token is
// resolved in the background while the recorder waits for the session, so a
// slow auth lookup is bounded by the recorder's session wait.
func (h *Handlers) SavePredictions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, errMissingToken)
		return
	}
	var result models.PredictionResult
	if err := decodeJSON(r, &result); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sessions := session.NewNotifier()
	resolved := make(chan error, 1)
	go func() {
		s, err := h.portal.Tokens.Resume(ctx, token)
		if err != nil {
			resolved <- err
			cancel()
			return
		}
		sessions.Publish(s)
		resolved <- nil
	}()

	report := h.portal.Recorder.Save(ctx, sessions, result)
	cancel()
	resolveErr := <-resolved

	if !report.SessionFound {
		if resolveErr == nil || errors.Is(resolveErr, context.Canceled) {
			resolveErr = errNoSession
		}
		slog.Warn("Prediction save without a session", "error", resolveErr, "predictionType", report.Type)
		writeError(w, resolveErr)
		return
	}
	status := http.StatusOK
	if report.Failed > 0 && report.Saved == 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, report)
}

// PredictionHistory lists the caller's saved predictions, newest first.
func (h *Handlers) PredictionHistory(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, errInvalidLimit)
			return
		}
		limit = n
	}
	s, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	records, err := h.portal.History.List(r.Context(), s.UID, limit)
	if err != nil {
		slog.Error("Failed to list predictions", "error", err, "uid", s.UID)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PredictionHistoryResponse{Status: "success", Records: records})
}

// HealthReport renders the caller's history as a PDF and returns its URL.
func (h *Handlers) HealthReport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	s, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	url, count, err := h.portal.Reports.Generate(r.Context(), s)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, models.HealthReportResponse{Status: "success", ReportURL: url, RecordCount: count})
}

func (h *Handlers) resolve(r *http.Request) (*models.Session, error) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, errMissingToken
	}
	s, err := h.portal.Tokens.Resume(r.Context(), token)
	if err != nil {
		slog.Warn("Could not resolve bearer token", "error", err)
		return nil, err
	}
	return s, nil
}

// NewFromEnv builds the portal from the environment and wraps it.
func NewFromEnv(ctx context.Context) (*Handlers, error) {
	portal, err := services.NewPortal(ctx)
	if err != nil {
		return nil, err
	}
	return New(portal), nil
}
