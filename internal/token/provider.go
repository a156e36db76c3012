package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gift-store-api/internal/model"
)

// Provider signs and verifies bearer tokens with a server-held HMAC secret.
// It is stateless; all methods are safe for concurrent use.
type Provider struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewProvider(secret string, accessTTL time.Duration, refreshTTL time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	return &Provider{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func (p *Provider) AccessTTL() time.Duration {
	return p.accessTTL
}

func (p *Provider) RefreshTTL() time.Duration {
	return p.refreshTTL
}

// Issue signs a token for the subject with the given ttl. Extra claims are
// merged in; sub, iat and exp always win over caller-supplied values.
func (p *Provider) Issue(subject string, extraClaims map[string]any, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := jwt.MapClaims{}
	for k, v := range extraClaims {
		claims[k] = v
	}
	claims["sub"] = subject
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueAccess signs a token with the short access ttl.
func (p *Provider) IssueAccess(subject string, extraClaims map[string]any) (string, error) {
	return p.Issue(subject, extraClaims, p.accessTTL)
}

// IssueRefresh signs a token with the longer refresh ttl. A refresh token is
// an ordinary signed token; only the ttl differs.
func (p *Provider) IssueRefresh(subject string) (string, error) {
	return p.Issue(subject, nil, p.refreshTTL)
}

// Parse verifies the signature and structure of a token and returns its
// claims. Every failure mode (bad signature, malformed input, unsupported
// algorithm, expired per the embedded exp) collapses into ErrInvalidAuth so
// the reason is never observable by callers.
func (p *Provider) Parse(tokenString string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidAuth
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidAuth
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrInvalidAuth
	}
	return claims, nil
}

// Subject extracts the sub claim from a verified token.
func (p *Provider) Subject(tokenString string) (string, error) {
	claims, err := p.Parse(tokenString)
	if err != nil {
		return "", err
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", model.ErrInvalidAuth
	}
	return subject, nil
}

// IsValid reports whether the token verifies, names the user as its subject,
// and has an expiry strictly in the future. Expiry is only ever evaluated
// here and in Parse; nothing sweeps tokens in the background.
func (p *Provider) IsValid(tokenString string, user model.User) bool {
	claims, err := p.Parse(tokenString)
	if err != nil {
		return false
	}

	subject, err := claims.GetSubject()
	if err != nil || subject != user.Username {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Time.After(time.Now())
}
