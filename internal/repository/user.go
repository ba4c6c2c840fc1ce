package repository

import (
	"context"

	"github.com/avsoftware/notes-backend/internal/domain"
)

// UseCase depends on interface, not concrete implementation.
// This way we get: 1) can swap DB later without touching usecase 2) We can pass a mock implementation of interface in tests
type UserRepository interface {
	// Create persists a new user. Returns domain.ErrDuplicateUser when the
	// email is already taken (unique index on email).
	Create(ctx context.Context, email, hashedPassword string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
