// file: model/token.go

package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenRecord is one persisted grant: an access token and its optional refresh token.
type TokenRecord struct {
	ID                 uuid.UUID  `json:"id"`
	AccessFingerprint  string     `json:"-"` // Fingerprints are never exposed in JSON responses.
	RefreshFingerprint *string    `json:"-"`
	ClientID           string     `json:"client_id"`
	UserID             *uuid.UUID `json:"user_id,omitempty"`
	Scopes             []string   `json:"scopes"`
	IssuedAt           time.Time  `json:"issued_at"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	Revoked            bool       `json:"revoked"`
}

// HasRefreshToken reports whether a refresh token was issued with the record.
func (r *TokenRecord) HasRefreshToken() bool {
	return r.RefreshFingerprint != nil
}

// Valid reports whether the record is neither revoked nor expired at now.
func (r *TokenRecord) Valid(now time.Time) bool {
	if r.Revoked {
		return false
	}
	return r.ExpiresAt == nil || r.ExpiresAt.After(now)
}

// NewToken carries a freshly issued token pair into the store.
// At most one of ExpiresAt and ExpiresIn may be set; ExpiresIn is resolved
// against the database clock at insert time.
type NewToken struct {
	AccessToken  string `validate:"required"`
	RefreshToken string
	ClientID     string `validate:"required,max=255"`
	UserID       *uuid.UUID
	Scopes       []string `validate:"unique,dive,scopetoken"`
	ExpiresAt    *time.Time
	ExpiresIn    time.Duration
}

// TokenType selects which token of a grant a request refers to.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access_token"
	TokenTypeRefresh TokenType = "refresh_token"
)
