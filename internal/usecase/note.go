package usecase

import (
	"context"
	"fmt"

	"github.com/avsoftware/notes-backend/internal/domain"
	"github.com/avsoftware/notes-backend/internal/repository"
)

type NoteUsecase struct {
	repo repository.NoteRepository
}

func NewNoteUsecase(repo repository.NoteRepository) *NoteUsecase {
	return &NoteUsecase{repo: repo}
}

type CreateNoteInput struct {
	OwnerID string
	Title   string
	Content string
	Color   int64
}

func (u *NoteUsecase) Create(ctx context.Context, input CreateNoteInput) (*domain.Note, error) {
	note := &domain.Note{
		OwnerID: input.OwnerID,
		Title:   input.Title,
		Content: input.Content,
		Color:   input.Color,
	}

	created, err := u.repo.Create(ctx, note)
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return created, nil
}

func (u *NoteUsecase) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	notes, err := u.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Delete removes a note only when ownerID actually owns it. Anything else is
// domain.ErrNoteNotFound.
func (u *NoteUsecase) Delete(ctx context.Context, noteID, ownerID string) error {
	return u.repo.Delete(ctx, noteID, ownerID)
}
