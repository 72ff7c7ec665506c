package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Lllllllleong/healthportal/internal/auth"
	"github.com/Lllllllleong/healthportal/internal/models"
	"github.com/Lllllllleong/healthportal/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(handler http.HandlerFunc, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRegister(t *testing.T) {
	f := newFixture()
	body := `{"firstname":"Ada","lastname":"Lovelace","mobileno":"0400","email":"ada@example.com","password":"secret123","confirmPassword":"secret123"}`

	rec := do(f.handlers.Register, http.MethodPost, "/", body, "")

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[models.RegisterResponse](t, rec)
	assert.Equal(t, "uid-ada@example.com", resp.UID)
	assert.Equal(t, "Ada Lovelace", resp.DisplayName)

	var profile models.UserProfile
	ok, err := f.docs.ReadDocument(context.Background(), "users", resp.UID, &profile)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "0400", profile.Mobileno)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		signUpErr error
		status    int
		message   string
	}{
		{"bad_json", `{`, nil, http.StatusBadRequest, "could not parse JSON"},
		{"missing_fields", `{"email":"a@b.c","password":"x","confirmPassword":"x"}`, nil, http.StatusBadRequest, "please fill all fields"},
		{"mismatch", `{"firstname":"A","lastname":"B","email":"a@b.c","password":"x","confirmPassword":"y"}`, nil, http.StatusBadRequest, "passwords do not match"},
		{"email_exists", `{"firstname":"A","lastname":"B","email":"a@b.c","password":"x","confirmPassword":"x"}`, auth.ErrEmailExists, http.StatusBadRequest, "already in use"},
		{"provider_down", `{"firstname":"A","lastname":"B","email":"a@b.c","password":"x","confirmPassword":"x"}`, errors.New("unavailable"), http.StatusInternalServerError, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.auth.signUpErr = tt.signUpErr

			rec := do(f.handlers.Register, http.MethodPost, "/", tt.body, "")

			assert.Equal(t, tt.status, rec.Code)
			resp := decode[models.ErrorResponse](t, rec)
			assert.Equal(t, "error", resp.Status)
			assert.Contains(t, resp.Error, tt.message)
		})
	}
}

func TestRegister_MethodNotAllowed(t *testing.T) {
	f := newFixture()
	rec := do(f.handlers.Register, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestLogin(t *testing.T) {
	f := newFixture()

	rec := do(f.handlers.Login, http.MethodPost, "/", `{"email":"ada@example.com","password":"secret123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[models.LoginResponse](t, rec)
	assert.Equal(t, "id-token", resp.IDToken)
	assert.Equal(t, "refresh-token", resp.RefreshToken)
	assert.InDelta(t, 3600, resp.ExpiresIn, 5)

	rec = do(f.handlers.Login, http.MethodPost, "/", `{"email":"ada@example.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(f.handlers.Login, http.MethodPost, "/", `{"email":"ada@example.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContact(t *testing.T) {
	f := newFixture()

	rec := do(f.handlers.Contact, http.MethodPost, "/", `{"name":"Ada","email":"ada@example.com","message":"Hello"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, f.docs.Collection("contacts"), 1)

	rec = do(f.handlers.Contact, http.MethodPost, "/", `{"name":"Ada","email":"ada@example.com"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, f.docs.Collection("contacts"), 1)
}

func TestProfile(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.docs.WriteDocument(context.Background(), "users", "u1", models.UserProfile{
		Firstname: "Ada", Lastname: "Lovelace", Mobileno: "0400", Email: "ada@example.com",
	}))

	rec := do(f.handlers.Profile, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SignedOutCard(), decode[models.ProfileCard](t, rec))

	rec = do(f.handlers.Profile, http.MethodGet, "/", "", "good-token")
	require.Equal(t, http.StatusOK, rec.Code)
	card := decode[models.ProfileCard](t, rec)
	assert.True(t, card.SignedIn)
	assert.Equal(t, "Ada Lovelace", card.Name)
	assert.Equal(t, "Mobile: 0400", card.Mobile)

	rec = do(f.handlers.Profile, http.MethodGet, "/", "", "bad-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	f := newFixture()

	rec := do(f.handlers.Logout, http.MethodPost, "/", "", "good-token")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", decode[models.StatusResponse](t, rec).Status)

	rec = do(f.handlers.Logout, http.MethodPost, "/", "", "bad-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(f.handlers.Logout, http.MethodPost, "/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile_ConcurrentCallersIsolated(t *testing.T) {
	f := newFixture()
	f.auth.tokens["grace-token"] = &models.Session{UID: "u2", Email: "grace@example.com", DisplayName: "Grace"}

	cards := make(chan models.ProfileCard, 20)
	for i := 0; i < 10; i++ {
		token := "good-token"
		if i%2 == 1 {
			token = "grace-token"
		}
		go func() {
			rec := do(f.handlers.Profile, http.MethodGet, "/", "", token)
			var card models.ProfileCard
			_ = json.Unmarshal(rec.Body.Bytes(), &card)
			cards <- card
		}()
	}

	byUID := map[string]string{}
	for i := 0; i < 10; i++ {
		card := <-cards
		byUID[card.UID] = card.Name
	}
	assert.Equal(t, map[string]string{"u1": "Ada Lovelace", "u2": "Grace"}, byUID)
}

func TestSavePredictions(t *testing.T) {
	f := newFixture()
	body := `{"type":"xray","single":{"filename":"a.png","label":"Pneumonia","confidence":0.9},"zip":[{"filename":"b.png","label":"Normal","confidence_percent":75}]}`

	rec := do(f.handlers.SavePredictions, http.MethodPost, "/", body, "good-token")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[services.SaveReport](t, rec)
	assert.True(t, report.SessionFound)
	assert.Equal(t, "u1", report.UID)
	assert.Equal(t, 2, report.Saved)
	assert.Len(t, report.DocumentIDs, 2)
	assert.Len(t, f.docs.Collection("users/u1/predictions"), 2)
}

func TestSavePredictions_MixedValidityZip(t *testing.T) {
	f := newFixture()
	body := `{"type":"skin","zip":[{"filename":"a.png","confidence":"0.9"},{"filename":"b.png","confidence":0.8}]}`

	rec := do(f.handlers.SavePredictions, http.MethodPost, "/", body, "good-token")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[services.SaveReport](t, rec).Saved)
	saved := f.docs.Collection("users/u1/predictions")
	require.Len(t, saved, 2)
	first := saved[0].(models.PersistedRecord)
	assert.Nil(t, first.Confidence)
	assert.Nil(t, first.ConfidencePercent)
	second := saved[1].(models.PersistedRecord)
	require.NotNil(t, second.ConfidencePercent)
	assert.InDelta(t, 80, *second.ConfidencePercent, 1e-9)
}

func TestSavePredictions_Unauthenticated(t *testing.T) {
	body := `{"type":"skin","single":{"label":"Benign"}}`
	tests := []struct {
		name    string
		token   string
		delay   time.Duration
		message string
	}{
		{"missing_token", "", 0, "missing bearer token"},
		{"invalid_token", "bad-token", 0, "invalid or expired"},
		{"slow_auth", "good-token", 5 * time.Second, "no signed-in user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.auth.resumeDelay = tt.delay

			start := time.Now()
			rec := do(f.handlers.SavePredictions, http.MethodPost, "/", body, tt.token)

			assert.Less(t, time.Since(start), 2*time.Second)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, decode[models.ErrorResponse](t, rec).Error, tt.message)
			assert.Empty(t, f.docs.Collection("users/u1/predictions"))
		})
	}
}

func TestPredictionHistory(t *testing.T) {
	f := newFixture()
	do(f.handlers.SavePredictions, http.MethodPost, "/",
		`{"type":"skin","zip":[{"label":"first"},{"label":"second"},{"label":"third"}]}`, "good-token")

	rec := do(f.handlers.PredictionHistory, http.MethodGet, "/?limit=2", "", "good-token")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[models.PredictionHistoryResponse](t, rec)
	require.Len(t, resp.Records, 2)
	assert.Equal(t, "third", *resp.Records[0].Label)
	assert.Equal(t, "second", *resp.Records[1].Label)
	assert.NotEmpty(t, resp.Records[0].ID)

	rec = do(f.handlers.PredictionHistory, http.MethodGet, "/?limit=zero", "", "good-token")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(f.handlers.PredictionHistory, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthReport_RequiresToken(t *testing.T) {
	f := newFixture()

	rec := do(f.handlers.HealthReport, http.MethodPost, "/", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(f.handlers.HealthReport, http.MethodPost, "/", "", "bad-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, f.blobs.Len())
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer  ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tt.header)
		got, ok := bearerToken(req)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}
