// seed inserts a dev user and a handful of notes into the local database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/avsoftware/notes-backend/internal/domain"
	"github.com/avsoftware/notes-backend/internal/infrastructure/postgres"
	"github.com/avsoftware/notes-backend/internal/password"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "password123"
)

type seedNote struct {
	title   string
	content string
	color   int64
}

var notes = []seedNote{
	{"Groceries", "milk, eggs, coffee beans", 0xFFF59D},
	{"Standup notes", "waiting on the staging DB migration", 0x90CAF9},
	{"Book list", "The Go Programming Language; Designing Data-Intensive Applications", 0xA5D6A7},
	{"Ideas", "pin notes? tags? full-text search?", 0xFFCC80},
	{"Empty-ish", ".", 0xEF9A9A},
}

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	noteRepo := postgres.NewNoteRepository(pool)

	hashed, err := password.NewBcryptHasher().Encode(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user, err := userRepo.Create(ctx, seedEmail, hashed)
	if errors.Is(err, domain.ErrDuplicateUser) {
		user, err = userRepo.FindByEmail(ctx, seedEmail)
	}
	if err != nil {
		log.Fatalf("seed user: %v", err)
	}

	for _, n := range notes {
		if _, err := noteRepo.Create(ctx, &domain.Note{
			OwnerID: user.ID,
			Title:   n.title,
			Content: n.content,
			Color:   n.color,
		}); err != nil {
			log.Fatalf("seed note %q: %v", n.title, err)
		}
	}

	fmt.Printf("seeded %s (password %q) with %d notes\n", seedEmail, seedPassword, len(notes))
}
