package model

import "time"

// TokenKind distinguishes ledger record kinds. Only bearer exists today.
type TokenKind string

const TokenKindBearer TokenKind = "BEARER"

// TokenRecord is one row of the append-only issuance ledger. A record is
// usable iff Expired and Revoked are both false and the embedded token still
// verifies and is unexpired. Rows are flagged on revocation, never deleted.
type TokenRecord struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	AccessToken string        `json:"access_token"`
	Kind        TokenKind     `json:"kind"`
	TTL         time.Duration `json:"ttl"`
	Expired     bool          `json:"expired"`
	Revoked     bool          `json:"revoked"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
