package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	ID             string
	Email          string
	HashedPassword string
	CreatedAt      time.Time
}
