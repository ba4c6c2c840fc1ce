package domain

import (
	"errors"
	"time"
)

var (
	// ErrTokenInvalid covers signature, format, expiry and type-claim failures.
	ErrTokenInvalid = errors.New("token is invalid or expired")
	// ErrTokenNotRecognized means a well-signed refresh token has no matching
	// store record: already rotated, expired, or never issued.
	ErrTokenNotRecognized = errors.New("refresh token not recognized")
)

// RefreshToken is the persisted record of an issued refresh token.
// Only the SHA-256 hash of the raw token is stored.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// TokenPair is what login and refresh hand back to the client.
// It is never persisted as a unit.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
