// file: model/request.go

package model

import "github.com/google/uuid"

// MaxExpiresInSeconds caps a requested token lifetime at ten years, well
// below the point where seconds overflow a time.Duration.
const MaxExpiresInSeconds int64 = 10 * 365 * 24 * 60 * 60

// StoreTokenRequest defines the payload for persisting a newly issued token pair.
type StoreTokenRequest struct {
	AccessToken  string     `json:"access_token" validate:"required"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ClientID     string     `json:"client_id" validate:"required,max=255"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Scopes       []string   `json:"scopes" validate:"unique,dive,scopetoken"`
	// ExpiresIn is the access token lifetime in seconds; zero means no expiry.
	ExpiresIn int64 `json:"expires_in,omitempty" validate:"gte=0,lte=315360000"`
}

// TokenRequest identifies a token for lookup or revocation.
// TokenTypeHint defaults to access_token.
type TokenRequest struct {
	Token         string    `json:"token" validate:"required"`
	TokenTypeHint TokenType `json:"token_type_hint,omitempty" validate:"omitempty,oneof=access_token refresh_token"`
}

// RevokeResponse reports whether a revocation changed any record.
type RevokeResponse struct {
	Revoked bool `json:"revoked"`
}

// CleanupResponse reports how many records a sweep removed.
type CleanupResponse struct {
	Deleted int64 `json:"deleted"`
}
