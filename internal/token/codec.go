package token

import (
	"errors"
	"strings"
	"time"

	"github.com/avsoftware/notes-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Kind discriminates access from refresh tokens via a signed claim, so one
// can never be replayed as the other.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// Codec mints and verifies HS256-signed tokens carrying a subject (user ID),
// a kind claim, and issued-at/expires-at timestamps. The signing key is fixed
// at construction; Codec is safe for concurrent use.
type Codec struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Codec)

// WithTTLs overrides the default access and refresh token lifetimes.
func WithTTLs(access, refresh time.Duration) Option {
	return func(c *Codec) {
		c.accessTTL = access
		c.refreshTTL = refresh
	}
}

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(key []byte, opts ...Option) *Codec {
	c := &Codec{
		key:        key,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RefreshTTL reports the refresh token lifetime so callers can persist
// matching store expiries.
func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

func (c *Codec) Issue(subject string, kind Kind) (string, error) {
	ttl := c.accessTTL
	if kind == KindRefresh {
		ttl = c.refreshTTL
	}

	now := c.now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"type": string(kind),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Verify reports whether the token is well-signed, unexpired, and of the
// expected kind. It never returns an error: any parse failure is false.
// A leading "Authorization: Bearer" prefix is tolerated.
func (c *Codec) Verify(raw string, expected Kind) bool {
	claims, err := c.parse(raw)
	if err != nil {
		return false
	}
	kind, _ := claims["type"].(string)
	return kind == string(expected)
}

// Subject extracts the user ID from a structurally valid token. It does not
// check the kind claim; callers that care must Verify first.
func (c *Codec) Subject(raw string) (string, error) {
	claims, err := c.parse(raw)
	if err != nil {
		return "", domain.ErrTokenInvalid
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrTokenInvalid
	}
	return sub, nil
}

func (c *Codec) parse(raw string) (jwt.MapClaims, error) {
	raw = strings.TrimPrefix(raw, "Bearer ")

	t, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.key, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !t.Valid {
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
