package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avsoftware/notes-backend/internal/domain"
	"github.com/avsoftware/notes-backend/internal/email"
	"github.com/avsoftware/notes-backend/internal/metrics"
	"github.com/avsoftware/notes-backend/internal/password"
	"github.com/avsoftware/notes-backend/internal/repository"
	"github.com/avsoftware/notes-backend/internal/token"
)

type AuthUsecase struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	codec  *token.Codec
	hasher password.Hasher
	email  email.Sender
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthUsecase(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	codec *token.Codec,
	hasher password.Hasher,
	emailSender email.Sender,
	logger *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		tokens: tokens,
		codec:  codec,
		hasher: hasher,
		email:  emailSender,
		logger: logger.With("component", "auth_usecase"),
		now:    time.Now,
	}
}

// Register creates a user with a hashed password. The raw password is never
// stored. The welcome email is best-effort: a mail outage must not block
// signup.
func (u *AuthUsecase) Register(ctx context.Context, emailAddr, rawPassword string) (*domain.User, error) {
	hashed, err := u.hasher.Encode(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, emailAddr, hashed)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, domain.ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.RegistrationsTotal.Inc()

	if err := u.email.Send(ctx, user.Email, "Welcome to Notes",
		"<p>Your account is ready. Happy note-taking!</p>"); err != nil {
		u.logger.WarnContext(ctx, "welcome email failed", "error", err)
	}

	return user, nil
}

// Login authenticates by email and password and returns a fresh token pair.
// Unknown email and wrong password are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, emailAddr, rawPassword string) (*domain.TokenPair, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !u.hasher.Matches(rawPassword, user.HashedPassword) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := u.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is atomically consumed
// before a new pair is minted, so each refresh token works at most once. Of
// two concurrent calls with the same token, the loser of the consume race
// gets domain.ErrTokenNotRecognized.
func (u *AuthUsecase) Refresh(ctx context.Context, rawRefreshToken string) (*domain.TokenPair, error) {
	if !u.codec.Verify(rawRefreshToken, token.KindRefresh) {
		metrics.TokenRefreshesTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrTokenInvalid
	}

	userID, err := u.codec.Subject(rawRefreshToken)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrTokenInvalid
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Treated the same as a bad token so a deleted account is not
			// observable through the refresh endpoint.
			metrics.TokenRefreshesTotal.WithLabelValues("invalid").Inc()
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	consumed, err := u.tokens.Consume(ctx, user.ID, token.Hash(rawRefreshToken))
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}
	if !consumed {
		metrics.TokenRefreshesTotal.WithLabelValues("not_recognized").Inc()
		return nil, domain.ErrTokenNotRecognized
	}

	pair, err := u.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	return pair, nil
}

// Logout revokes a refresh token. It is idempotent: unknown or already
// consumed tokens are not an error.
func (u *AuthUsecase) Logout(ctx context.Context, rawRefreshToken string) error {
	userID, err := u.codec.Subject(rawRefreshToken)
	if err != nil {
		return nil
	}
	if _, err := u.tokens.Consume(ctx, userID, token.Hash(rawRefreshToken)); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer access token to a user ID. It never returns
// an error: any failure is simply an anonymous result.
func (u *AuthUsecase) Authenticate(bearerToken string) (string, bool) {
	if !u.codec.Verify(bearerToken, token.KindAccess) {
		return "", false
	}
	userID, err := u.codec.Subject(bearerToken)
	if err != nil {
		return "", false
	}
	return userID, true
}

func (u *AuthUsecase) issuePair(ctx context.Context, userID string) (*domain.TokenPair, error) {
	access, err := u.codec.Issue(userID, token.KindAccess)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := u.codec.Issue(userID, token.KindRefresh)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	expiresAt := u.now().Add(u.codec.RefreshTTL())
	if _, err := u.tokens.Create(ctx, userID, token.Hash(refresh), expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
