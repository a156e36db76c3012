package middleware

import (
	"context"
	"net/http"
	"strings"

	"gift-store-api/internal/model"
)

// tokenParser is the slice of the token provider the middleware needs.
type tokenParser interface {
	Subject(tokenString string) (string, error)
	IsValid(tokenString string, user model.User) bool
}

type principalDirectory interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

type tokenLedger interface {
	FindActive(ctx context.Context, accessToken string) (model.TokenRecord, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

// AuthMiddleware authenticates requests from bearer access tokens. A token is
// accepted only when its signature verifies, its subject resolves to a known
// user, and the ledger still holds an unexpired, unrevoked record for it.
type AuthMiddleware struct {
	parser tokenParser
	users  principalDirectory
	tokens tokenLedger
}

func NewAuthMiddleware(parser tokenParser, users principalDirectory, tokens tokenLedger) *AuthMiddleware {
	return &AuthMiddleware{parser: parser, users: users, tokens: tokens}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			writeRefusal(w, http.StatusUnauthorized, "INVALID_AUTH", "invalid jwt authentication")
			return
		}
		accessToken := strings.TrimSpace(header[7:])

		username, err := m.parser.Subject(accessToken)
		if err != nil {
			writeRefusal(w, http.StatusUnauthorized, "INVALID_AUTH", "invalid jwt authentication")
			return
		}

		user, err := m.users.FindByUsername(r.Context(), username)
		if err != nil {
			writeRefusal(w, http.StatusUnauthorized, "INVALID_AUTH", "invalid jwt authentication")
			return
		}

		if _, err := m.tokens.FindActive(r.Context(), accessToken); err != nil {
			writeRefusal(w, http.StatusUnauthorized, "INVALID_AUTH", "invalid jwt authentication")
			return
		}

		if !m.parser.IsValid(accessToken, user) {
			writeRefusal(w, http.StatusUnauthorized, "INVALID_AUTH", "invalid jwt authentication")
			return
		}

		claims := &model.AuthClaims{
			UserID:      user.ID,
			Username:    user.Username,
			Role:        user.Role,
			Authorities: model.GrantedAuthorities(user.Role),
		}
		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuthority guards a route on one authority string from the role
// expansion, e.g. "admin:create" or "ROLE_ADMIN".
func (m *AuthMiddleware) RequireAuthority(authority string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeRefusal(w, http.StatusUnauthorized, "INVALID_AUTH", "authentication required")
				return
			}

			if !model.HasAuthority(claims.Authorities, authority) {
				writeRefusal(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*model.AuthClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AuthClaims)
	return claims, ok
}

