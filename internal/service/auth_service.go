package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gift-store-api/internal/model"
	"gift-store-api/internal/token"
	"gift-store-api/pkg/apierror"
)

const bearerPrefix = "Bearer "

// UserDirectory is the external principal store consumed by the orchestrator.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Save(ctx context.Context, u model.User) (model.User, error)
}

// TokenLedger is the append-only store of issued access-token records.
// RevokeAllValidAndSave must execute as one atomic unit per user: revoking
// the old records and inserting the new one in separate steps would let two
// racing logins both finish with an active record.
type TokenLedger interface {
	FindActive(ctx context.Context, accessToken string) (model.TokenRecord, error)
	FindAllValid(ctx context.Context, userID string) ([]model.TokenRecord, error)
	Save(ctx context.Context, rec model.TokenRecord) (model.TokenRecord, error)
	RevokeAllValidAndSave(ctx context.Context, userID string, rec model.TokenRecord) (model.TokenRecord, error)
}

// AuthService orchestrates signup, login, refresh and logout across the token
// provider, the user directory and the ledger.
type AuthService struct {
	provider *token.Provider
	users    UserDirectory
	tokens   TokenLedger
	verifier CredentialVerifier
	hasher   PasswordHasher
}

func NewAuthService(
	provider *token.Provider,
	users UserDirectory,
	tokens TokenLedger,
	verifier CredentialVerifier,
	hasher PasswordHasher,
) *AuthService {
	return &AuthService{
		provider: provider,
		users:    users,
		tokens:   tokens,
		verifier: verifier,
		hasher:   hasher,
	}
}

// Signup registers a new user with the default USER role and issues its first
// token pair.
func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (model.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	password := strings.TrimSpace(req.Password)
	if username == "" || password == "" {
		return model.AuthResponse{}, apierror.BadRequest("username and password are required", "")
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if exists {
		return model.AuthResponse{}, model.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	now := time.Now().UTC()
	user, err := s.users.Save(ctx, model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return model.AuthResponse{}, err
	}

	slog.Info("user signed up", "username", user.Username)
	return s.issueTokenPair(ctx, user)
}

// Login verifies credentials, revokes every token previously valid for the
// user, and issues a fresh pair. The ledger revokes and records in one atomic
// step so that after any number of concurrent logins exactly one access
// record per user is active.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.verifier.Verify(ctx, strings.TrimSpace(req.Username), req.Password)
	if errors.Is(err, model.ErrBadCredentials) {
		return model.AuthResponse{}, apierror.AuthenticationFailed()
	}
	if err != nil {
		return model.AuthResponse{}, err
	}

	accessToken, refreshToken, err := s.issuePair(user)
	if err != nil {
		return model.AuthResponse{}, err
	}

	if _, err := s.tokens.RevokeAllValidAndSave(ctx, user.ID, s.newAccessRecord(user, accessToken)); err != nil {
		return model.AuthResponse{}, err
	}

	return s.pairResponse(user, accessToken, refreshToken), nil
}

// Refresh exchanges a refresh token presented in the Authorization header for
// a new access token. The refresh token itself is returned unchanged; only
// access tokens are ever written to the ledger.
func (s *AuthService) Refresh(ctx context.Context, authorizationHeader string) (model.RefreshResponse, error) {
	if !strings.HasPrefix(authorizationHeader, bearerPrefix) {
		return model.RefreshResponse{}, apierror.InvalidAuth()
	}
	refreshToken := authorizationHeader[len(bearerPrefix):]

	username, err := s.provider.Subject(refreshToken)
	if err != nil {
		return model.RefreshResponse{}, apierror.InvalidAuth()
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, model.ErrUserNotFound) {
		// Collapsed so refresh never leaks whether an account exists.
		return model.RefreshResponse{}, apierror.InvalidAuth()
	}
	if err != nil {
		return model.RefreshResponse{}, err
	}

	if !s.provider.IsValid(refreshToken, user) {
		return model.RefreshResponse{}, apierror.InvalidAuth()
	}

	accessToken, err := s.provider.IssueAccess(user.Username, accessClaims(user))
	if err != nil {
		return model.RefreshResponse{}, err
	}

	if _, err := s.tokens.Save(ctx, s.newAccessRecord(user, accessToken)); err != nil {
		return model.RefreshResponse{}, err
	}

	return model.RefreshResponse{
		Username:     user.Username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().UTC().Add(s.provider.AccessTTL()),
	}, nil
}

// Logout revokes the presented access token. Missing or already-revoked
// tokens are not errors; a retried logout is a no-op.
func (s *AuthService) Logout(ctx context.Context, authorizationHeader string) error {
	accessToken := strings.TrimPrefix(authorizationHeader, bearerPrefix)

	rec, err := s.tokens.FindActive(ctx, accessToken)
	if errors.Is(err, model.ErrTokenNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	rec.Expired = true
	rec.Revoked = true
	rec.UpdatedAt = time.Now().UTC()
	_, err = s.tokens.Save(ctx, rec)
	return err
}

// FindPrincipal loads a user by username.
func (s *AuthService) FindPrincipal(ctx context.Context, username string) (model.User, error) {
	return s.users.FindByUsername(ctx, username)
}

// issueTokenPair issues an access+refresh pair and persists the access
// record. Refresh tokens are deliberately not recorded: they stay valid until
// their own expiry even after a later revoke-all.
func (s *AuthService) issueTokenPair(ctx context.Context, user model.User) (model.AuthResponse, error) {
	accessToken, refreshToken, err := s.issuePair(user)
	if err != nil {
		return model.AuthResponse{}, err
	}

	if _, err := s.tokens.Save(ctx, s.newAccessRecord(user, accessToken)); err != nil {
		return model.AuthResponse{}, err
	}

	return s.pairResponse(user, accessToken, refreshToken), nil
}

// issuePair mints an access+refresh pair without touching the ledger.
func (s *AuthService) issuePair(user model.User) (string, string, error) {
	accessToken, err := s.provider.IssueAccess(user.Username, accessClaims(user))
	if err != nil {
		return "", "", err
	}

	refreshToken, err := s.provider.IssueRefresh(user.Username)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *AuthService) pairResponse(user model.User, accessToken string, refreshToken string) model.AuthResponse {
	return model.AuthResponse{
		ID:           user.ID,
		Username:     user.Username,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().UTC().Add(s.provider.AccessTTL()),
	}
}

func (s *AuthService) newAccessRecord(user model.User, accessToken string) model.TokenRecord {
	now := time.Now().UTC()
	return model.TokenRecord{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		AccessToken: accessToken,
		Kind:        model.TokenKindBearer,
		TTL:         s.provider.AccessTTL(),
		Expired:     false,
		Revoked:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// accessClaims embeds the role and a unique jti so tokens issued within the
// same second never collide on the ledger's unique token column.
func accessClaims(user model.User) map[string]any {
	return map[string]any{
		"username":    user.Username,
		"role":        string(user.Role),
		"authorities": model.GrantedAuthorities(user.Role),
		"jti":         uuid.NewString(),
	}
}
