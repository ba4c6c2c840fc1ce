package repository

import (
	"context"
	"time"

	"github.com/avsoftware/notes-backend/internal/domain"
)

type RefreshTokenRepository interface {
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (*domain.RefreshToken, error)

	// Consume atomically deletes the unexpired record matching (userID,
	// tokenHash) and reports whether this caller removed it. Two concurrent
	// refresh calls with the same token race on this delete; exactly one
	// sees true.
	Consume(ctx context.Context, userID, tokenHash string) (bool, error)

	// DeleteExpired removes records past their expiry and returns the count.
	// Stands in for the TTL index the store would otherwise provide.
	DeleteExpired(ctx context.Context) (int, error)
}
