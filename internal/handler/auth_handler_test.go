package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gift-store-api/internal/model"
	"gift-store-api/internal/service"
	"gift-store-api/internal/token"
)

type stubDirectory struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (d *stubDirectory) FindByUsername(_ context.Context, username string) (model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[strings.ToLower(username)]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (d *stubDirectory) ExistsByUsername(_ context.Context, username string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.users[strings.ToLower(username)]
	return ok, nil
}

func (d *stubDirectory) Save(_ context.Context, u model.User) (model.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[strings.ToLower(u.Username)] = u
	return u, nil
}

type stubLedger struct {
	mu      sync.Mutex
	records map[string]model.TokenRecord
}

func (l *stubLedger) FindActive(_ context.Context, accessToken string) (model.TokenRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.records[accessToken]
	if !ok || rec.Expired || rec.Revoked {
		return model.TokenRecord{}, model.ErrTokenNotFound
	}
	return rec, nil
}

func (l *stubLedger) FindAllValid(_ context.Context, userID string) ([]model.TokenRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	valid := make([]model.TokenRecord, 0)
	for _, rec := range l.records {
		if rec.UserID == userID && !rec.Expired && !rec.Revoked {
			valid = append(valid, rec)
		}
	}
	return valid, nil
}

func (l *stubLedger) Save(_ context.Context, rec model.TokenRecord) (model.TokenRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[rec.AccessToken] = rec
	return rec, nil
}

func (l *stubLedger) RevokeAllValidAndSave(_ context.Context, userID string, rec model.TokenRecord) (model.TokenRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, old := range l.records {
		if old.UserID == userID {
			old.Expired = true
			old.Revoked = true
			l.records[key] = old
		}
	}
	l.records[rec.AccessToken] = rec
	return rec, nil
}

type stubEvents struct {
	mu     sync.Mutex
	events []model.SecurityEvent
}

func (s *stubEvents) Log(_ context.Context, event model.SecurityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *stubEvents) Query(_ context.Context, _ model.SecurityEventQuery) ([]model.SecurityEvent, model.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events, model.Meta{Total: len(s.events)}, nil
}

func newAuthHandlerFixture(t *testing.T) (*AuthHandler, *stubEvents) {
	t.Helper()

	prov, err := token.NewProvider("handler-test-secret", 15*time.Minute, time.Hour)
	require.NoError(t, err)

	dir := &stubDirectory{users: map[string]model.User{}}
	ledger := &stubLedger{records: map[string]model.TokenRecord{}}
	events := &stubEvents{}

	auth := service.NewAuthService(prov, dir, ledger, service.NewBcryptVerifier(dir), service.NewBcryptHasher(4))
	return NewAuthHandler(auth, service.NewAuditService(events)), events
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
		Error   *model.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Error *model.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error.Code
}

func TestAuthHandler_SignupAndLogin(t *testing.T) {
	h, events := newAuthHandlerFixture(t)

	rec := postJSON(t, h.Signup, "/api/v1/auth/signup", model.SignupRequest{
		Username: "alice", Email: "a@x.com", Password: "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	data := decodeData(t, rec)
	firstAccess, _ := data["access_token"].(string)
	require.NotEmpty(t, firstAccess)
	require.NotEmpty(t, data["refresh_token"])

	t.Run("duplicate signup conflicts", func(t *testing.T) {
		rec := postJSON(t, h.Signup, "/api/v1/auth/signup", model.SignupRequest{
			Username: "alice", Email: "a@x.com", Password: "pw",
		})
		require.Equal(t, http.StatusConflict, rec.Code)
		require.Equal(t, "ALREADY_EXISTS", decodeErrorCode(t, rec))
	})

	t.Run("login with bad password is unauthorized", func(t *testing.T) {
		rec := postJSON(t, h.Login, "/api/v1/auth/login", model.LoginRequest{Username: "alice", Password: "nope"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "AUTHENTICATION_FAILED", decodeErrorCode(t, rec))
	})

	t.Run("login rotates the access token", func(t *testing.T) {
		rec := postJSON(t, h.Login, "/api/v1/auth/login", model.LoginRequest{Username: "alice", Password: "pw"})
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeData(t, rec)
		require.NotEqual(t, firstAccess, data["access_token"])
	})

	t.Run("every attempt was audited", func(t *testing.T) {
		recorded, _, err := events.Query(context.Background(), model.SecurityEventQuery{})
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(recorded), 4)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	h, _ := newAuthHandlerFixture(t)

	rec := postJSON(t, h.Signup, "/api/v1/auth/signup", model.SignupRequest{
		Username: "alice", Email: "a@x.com", Password: "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	refreshToken, _ := decodeData(t, rec)["refresh_token"].(string)

	t.Run("missing bearer prefix is invalid auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.Header.Set("Authorization", refreshToken)
		rec := httptest.NewRecorder()
		h.Refresh(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "INVALID_AUTH", decodeErrorCode(t, rec))
	})

	t.Run("valid refresh returns the same refresh token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
		req.Header.Set("Authorization", "Bearer "+refreshToken)
		rec := httptest.NewRecorder()
		h.Refresh(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeData(t, rec)
		require.Equal(t, refreshToken, data["refresh_token"])
		require.NotEmpty(t, data["access_token"])
	})
}

func TestAuthHandler_LogoutIsIdempotent(t *testing.T) {
	h, _ := newAuthHandlerFixture(t)

	rec := postJSON(t, h.Signup, "/api/v1/auth/signup", model.SignupRequest{
		Username: "alice", Email: "a@x.com", Password: "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	accessToken, _ := decodeData(t, rec)["access_token"].(string)

	logout := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rec := httptest.NewRecorder()
		h.Logout(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, logout().Code)
	require.Equal(t, http.StatusOK, logout().Code)
}
