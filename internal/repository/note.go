package repository

import (
	"context"

	"github.com/avsoftware/notes-backend/internal/domain"
)

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) (*domain.Note, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error)
	// Delete is scoped by owner: deleting someone else's note reports
	// domain.ErrNoteNotFound, same as a note that never existed.
	Delete(ctx context.Context, noteID, ownerID string) error
}
