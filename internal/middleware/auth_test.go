package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gift-store-api/internal/model"
	"gift-store-api/internal/token"
)

type fakeDirectory map[string]model.User

func (d fakeDirectory) FindByUsername(_ context.Context, username string) (model.User, error) {
	user, ok := d[username]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

type fakeLedger map[string]model.TokenRecord

func (l fakeLedger) FindActive(_ context.Context, accessToken string) (model.TokenRecord, error) {
	rec, ok := l[accessToken]
	if !ok || rec.Expired || rec.Revoked {
		return model.TokenRecord{}, model.ErrTokenNotFound
	}
	return rec, nil
}

func authTestSetup(t *testing.T) (*AuthMiddleware, *token.Provider, fakeDirectory, fakeLedger) {
	t.Helper()

	prov, err := token.NewProvider("middleware-test-secret", 15*time.Minute, time.Hour)
	require.NoError(t, err)

	dir := fakeDirectory{"alice": {ID: "u-1", Username: "alice", Role: model.RoleAdmin}}
	ledger := fakeLedger{}
	return NewAuthMiddleware(prov, dir, ledger), prov, dir, ledger
}

func okHandler(claimsOut **model.AuthClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claimsOut != nil {
			if claims, ok := ClaimsFromContext(r.Context()); ok {
				*claimsOut = claims
			}
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	t.Run("accepts a valid ledgered token and attaches claims", func(t *testing.T) {
		mw, prov, _, ledger := authTestSetup(t)

		signed, err := prov.IssueAccess("alice", nil)
		require.NoError(t, err)
		ledger[signed] = model.TokenRecord{UserID: "u-1", AccessToken: signed}

		var claims *model.AuthClaims
		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		mw.RequireAuth(okHandler(&claims)).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, claims)
		require.Equal(t, "alice", claims.Username)
		require.Contains(t, claims.Authorities, "ROLE_ADMIN")
		require.Contains(t, claims.Authorities, model.PermAdminDelete)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		mw, _, _, _ := authTestSetup(t)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		rec := httptest.NewRecorder()
		mw.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a revoked token even though its signature verifies", func(t *testing.T) {
		mw, prov, _, ledger := authTestSetup(t)

		signed, err := prov.IssueAccess("alice", nil)
		require.NoError(t, err)
		ledger[signed] = model.TokenRecord{UserID: "u-1", AccessToken: signed, Revoked: true, Expired: true}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		mw.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a token absent from the ledger", func(t *testing.T) {
		mw, prov, _, _ := authTestSetup(t)

		signed, err := prov.IssueAccess("alice", nil)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		mw.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects an unknown subject", func(t *testing.T) {
		mw, prov, _, _ := authTestSetup(t)

		signed, err := prov.IssueAccess("ghost", nil)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rec := httptest.NewRecorder()
		mw.RequireAuth(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthMiddleware_RequireAuthority(t *testing.T) {
	mw, prov, dir, ledger := authTestSetup(t)
	dir["bob"] = model.User{ID: "u-2", Username: "bob", Role: model.RoleUser}

	issue := func(t *testing.T, username string) string {
		t.Helper()
		signed, err := prov.IssueAccess(username, nil)
		require.NoError(t, err)
		ledger[signed] = model.TokenRecord{AccessToken: signed}
		return signed
	}

	guarded := mw.RequireAuth(mw.RequireAuthority(model.PermAdminCreate)(okHandler(nil)))

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, "alice"))
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("plain user is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", nil)
		req.Header.Set("Authorization", "Bearer "+issue(t, "bob"))
		rec := httptest.NewRecorder()
		guarded.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated request is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/certificates", nil)
		rec := httptest.NewRecorder()
		mw.RequireAuthority(model.PermAdminCreate)(okHandler(nil)).ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
