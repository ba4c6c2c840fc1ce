package domain

import (
	"errors"
	"time"
)

var ErrNoteNotFound = errors.New("note not found")

type Note struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	Color     int64
	CreatedAt time.Time
}
