package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/avsoftware/notes-backend/internal/domain"
	"github.com/avsoftware/notes-backend/internal/token"
	"github.com/avsoftware/notes-backend/internal/usecase"
)

// ---- fakes ----

type fakeUserRepo struct {
	create      func(ctx context.Context, email, hashedPassword string) (*domain.User, error)
	findByEmail func(ctx context.Context, email string) (*domain.User, error)
	findByID    func(ctx context.Context, id string) (*domain.User, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, email, hashedPassword string) (*domain.User, error) {
	return r.create(ctx, email, hashedPassword)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

// memoryTokenStore is a mutex-guarded in-memory RefreshTokenRepository whose
// Consume has the same atomic delete-if-present semantics as the SQL one.
type memoryTokenStore struct {
	mu      sync.Mutex
	records map[string]time.Time // userID+"|"+hash -> expiry
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{records: make(map[string]time.Time)}
}

func (s *memoryTokenStore) Create(_ context.Context, userID, tokenHash string, expiresAt time.Time) (*domain.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[userID+"|"+tokenHash] = expiresAt
	return &domain.RefreshToken{UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}, nil
}

func (s *memoryTokenStore) Consume(_ context.Context, userID, tokenHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userID + "|" + tokenHash
	expiry, ok := s.records[key]
	if !ok || !expiry.After(time.Now()) {
		return false, nil
	}
	delete(s.records, key)
	return true, nil
}

func (s *memoryTokenStore) DeleteExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, expiry := range s.records {
		if !expiry.After(time.Now()) {
			delete(s.records, key)
			n++
		}
	}
	return n, nil
}

func (s *memoryTokenStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// fakeHasher avoids bcrypt cost in usecase tests.
type fakeHasher struct{}

func (fakeHasher) Encode(raw string) (string, error) { return "hashed:" + raw, nil }
func (fakeHasher) Matches(raw, hash string) bool     { return hash == "hashed:"+raw }

type fakeSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	if s.send == nil {
		return nil
	}
	return s.send(ctx, to, subject, body)
}

// ---- helpers ----

var (
	testJWTKey = []byte("usecase-test-secret-at-least-32chars")
	testUser   = &domain.User{ID: "user-1", Email: "test@example.com", HashedPassword: "hashed:pw"}
)

func testCodec() *token.Codec {
	return token.NewCodec(testJWTKey)
}

func newAuth(users *fakeUserRepo, tokens *memoryTokenStore, sender *fakeSender) *usecase.AuthUsecase {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return usecase.NewAuthUsecase(users, tokens, testCodec(), fakeHasher{}, sender, logger)
}

// singleUserRepo returns a repo where testUser is the only account.
func singleUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email == testUser.Email {
				return testUser, nil
			}
			return nil, domain.ErrUserNotFound
		},
		findByID: func(_ context.Context, id string) (*domain.User, error) {
			if id == testUser.ID {
				return testUser, nil
			}
			return nil, domain.ErrUserNotFound
		},
	}
}

// ---- Register ----

func TestRegister_StoresHashedPassword(t *testing.T) {
	var storedPassword string
	users := &fakeUserRepo{
		create: func(_ context.Context, email, hashedPassword string) (*domain.User, error) {
			storedPassword = hashedPassword
			return &domain.User{ID: "user-1", Email: email, HashedPassword: hashedPassword}, nil
		},
	}

	user, err := newAuth(users, newMemoryTokenStore(), &fakeSender{}).
		Register(context.Background(), "a@x.com", "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Errorf("email = %q, want %q", user.Email, "a@x.com")
	}
	if storedPassword == "pw" {
		t.Error("raw password was stored")
	}
	if storedPassword != "hashed:pw" {
		t.Errorf("stored password = %q, want hash of raw", storedPassword)
	}
}

func TestRegister_DuplicateEmail_ReturnsErrDuplicateUser(t *testing.T) {
	users := &fakeUserRepo{
		create: func(_ context.Context, _, _ string) (*domain.User, error) {
			return nil, domain.ErrDuplicateUser
		},
	}

	_, err := newAuth(users, newMemoryTokenStore(), &fakeSender{}).
		Register(context.Background(), testUser.Email, "pw")
	if !errors.Is(err, domain.ErrDuplicateUser) {
		t.Errorf("want ErrDuplicateUser, got %v", err)
	}
}

func TestRegister_EmailFailure_DoesNotBlockSignup(t *testing.T) {
	users := &fakeUserRepo{
		create: func(_ context.Context, email, hashedPassword string) (*domain.User, error) {
			return &domain.User{ID: "user-1", Email: email, HashedPassword: hashedPassword}, nil
		},
	}
	sender := &fakeSender{
		send: func(_ context.Context, _, _, _ string) error {
			return errors.New("smtp unavailable")
		},
	}

	if _, err := newAuth(users, newMemoryTokenStore(), sender).
		Register(context.Background(), "a@x.com", "pw"); err != nil {
		t.Errorf("registration failed on email outage: %v", err)
	}
}

// ---- Login ----

func TestLogin_UnknownEmailAndWrongPassword_SameError(t *testing.T) {
	auth := newAuth(singleUserRepo(), newMemoryTokenStore(), &fakeSender{})

	_, errUnknown := auth.Login(context.Background(), "nobody@x.com", "pw")
	_, errWrongPW := auth.Login(context.Background(), testUser.Email, "wrong")

	if !errors.Is(errUnknown, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email: want ErrInvalidCredentials, got %v", errUnknown)
	}
	if !errors.Is(errWrongPW, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: want ErrInvalidCredentials, got %v", errWrongPW)
	}
	if errUnknown.Error() != errWrongPW.Error() {
		t.Error("the two failure modes are distinguishable by message")
	}
}

func TestLogin_Success_ReturnsVerifiablePair(t *testing.T) {
	store := newMemoryTokenStore()
	auth := newAuth(singleUserRepo(), store, &fakeSender{})

	pair, err := auth.Login(context.Background(), testUser.Email, "pw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	codec := testCodec()
	if !codec.Verify(pair.AccessToken, token.KindAccess) {
		t.Error("access token does not verify as access")
	}
	if !codec.Verify(pair.RefreshToken, token.KindRefresh) {
		t.Error("refresh token does not verify as refresh")
	}
	if store.len() != 1 {
		t.Errorf("store has %d records, want 1", store.len())
	}
	if ok, _ := store.Consume(context.Background(), testUser.ID, token.Hash(pair.RefreshToken)); !ok {
		t.Error("stored record is not the hash of the returned refresh token")
	}
}

// ---- Authenticate ----

func TestAuthenticate_BearerAccessToken_ResolvesUser(t *testing.T) {
	auth := newAuth(singleUserRepo(), newMemoryTokenStore(), &fakeSender{})

	pair, err := auth.Login(context.Background(), testUser.Email, "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	userID, ok := auth.Authenticate("Bearer " + pair.AccessToken)
	if !ok {
		t.Fatal("valid access token rejected")
	}
	if userID != testUser.ID {
		t.Errorf("userID = %q, want %q", userID, testUser.ID)
	}
}

func TestAuthenticate_RefreshToken_Anonymous(t *testing.T) {
	auth := newAuth(singleUserRepo(), newMemoryTokenStore(), &fakeSender{})

	pair, err := auth.Login(context.Background(), testUser.Email, "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, ok := auth.Authenticate("Bearer " + pair.RefreshToken); ok {
		t.Error("refresh token accepted as an access credential")
	}
}

func TestAuthenticate_Garbage_Anonymous(t *testing.T) {
	auth := newAuth(singleUserRepo(), newMemoryTokenStore(), &fakeSender{})

	if _, ok := auth.Authenticate("Bearer garbage"); ok {
		t.Error("garbage token authenticated")
	}
}

// ---- Refresh ----

func TestRefresh_MalformedToken_ReturnsErrTokenInvalid(t *testing.T) {
	auth := newAuth(singleUserRepo(), newMemoryTokenStore(), &fakeSender{})

	_, err := auth.Refresh(context.Background(), "not.a.token")
	if !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestRefresh_AccessTokenPresented_ReturnsErrTokenInvalid(t *testing.T) {
	auth := newAuth(singleUserRepo(), newMemoryTokenStore(), &fakeSender{})

	pair, err := auth.Login(context.Background(), testUser.Email, "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := auth.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestRefresh_UserNoLongerExists_ReturnsErrTokenInvalid(t *testing.T) {
	users := &fakeUserRepo{
		findByID: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	auth := newAuth(users, newMemoryTokenStore(), &fakeSender{})

	refresh, err := testCodec().Issue("ghost-user", token.KindRefresh)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := auth.Refresh(context.Background(), refresh); !errors.Is(err, domain.ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
}

func TestRefresh_UnpersistedToken_ReturnsErrTokenNotRecognized(t *testing.T) {
	auth := newAuth(singleUserRepo(), newMemoryTokenStore(), &fakeSender{})

	// Well-signed refresh token that was never stored.
	refresh, err := testCodec().Issue(testUser.ID, token.KindRefresh)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := auth.Refresh(context.Background(), refresh); !errors.Is(err, domain.ErrTokenNotRecognized) {
		t.Errorf("want ErrTokenNotRecognized, got %v", err)
	}
}

func TestRefresh_RotatesPair(t *testing.T) {
	store := newMemoryTokenStore()
	auth := newAuth(singleUserRepo(), store, &fakeSender{})

	pair, err := auth.Login(context.Background(), testUser.Email, "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	next, err := auth.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("refresh returned the same refresh token")
	}
	if store.len() != 1 {
		t.Errorf("store has %d records after rotation, want 1", store.len())
	}

	userID, ok := auth.Authenticate("Bearer " + next.AccessToken)
	if !ok || userID != testUser.ID {
		t.Errorf("rotated access token resolves to (%q, %v), want (%q, true)", userID, ok, testUser.ID)
	}
}

func TestRefresh_SecondUseOfSameToken_Fails(t *testing.T) {
	auth := newAuth(singleUserRepo(), newMemoryTokenStore(), &fakeSender{})

	pair, err := auth.Login(context.Background(), testUser.Email, "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := auth.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if _, err := auth.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrTokenNotRecognized) {
		t.Errorf("second refresh: want ErrTokenNotRecognized, got %v", err)
	}
}

func TestRefresh_ConcurrentDoubleUse_ExactlyOneWins(t *testing.T) {
	auth := newAuth(singleUserRepo(), newMemoryTokenStore(), &fakeSender{})

	pair, err := auth.Login(context.Background(), testUser.Email, "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	results := make(chan error, 2)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < 2; i++ {
		go func() {
			start.Wait()
			_, err := auth.Refresh(context.Background(), pair.RefreshToken)
			results <- err
		}()
	}
	start.Done()

	var successes, notRecognized int
	for i := 0; i < 2; i++ {
		switch err := <-results; {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrTokenNotRecognized):
			notRecognized++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 || notRecognized != 1 {
		t.Errorf("got %d successes and %d ErrTokenNotRecognized, want exactly 1 of each",
			successes, notRecognized)
	}
}

// ---- end to end ----

// memoryUserRepo backs the full register→login→refresh scenario.
type memoryUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	nextID  int
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, email, hashedPassword string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return nil, domain.ErrDuplicateUser
	}
	r.nextID++
	u := &domain.User{
		ID:             fmt.Sprintf("user-%d", r.nextID),
		Email:          email,
		HashedPassword: hashedPassword,
	}
	r.byEmail[email] = u
	return u, nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func TestEndToEnd_RegisterLoginAuthenticateRefresh(t *testing.T) {
	users := newMemoryUserRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := usecase.NewAuthUsecase(users, newMemoryTokenStore(), testCodec(), fakeHasher{}, &fakeSender{}, logger)
	ctx := context.Background()

	registered, err := auth.Register(ctx, "a@x.com", "password1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := auth.Register(ctx, "a@x.com", "password1"); !errors.Is(err, domain.ErrDuplicateUser) {
		t.Errorf("second register: want ErrDuplicateUser, got %v", err)
	}

	pair, err := auth.Login(ctx, "a@x.com", "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	userID, ok := auth.Authenticate("Bearer " + pair.AccessToken)
	if !ok || userID != registered.ID {
		t.Fatalf("authenticate = (%q, %v), want (%q, true)", userID, ok, registered.ID)
	}

	next, err := auth.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	userID, ok = auth.Authenticate("Bearer " + next.AccessToken)
	if !ok || userID != registered.ID {
		t.Errorf("post-refresh authenticate = (%q, %v), want (%q, true)", userID, ok, registered.ID)
	}
}

// ---- Logout ----

func TestLogout_RevokesRefreshToken(t *testing.T) {
	auth := newAuth(singleUserRepo(), newMemoryTokenStore(), &fakeSender{})

	pair, err := auth.Login(context.Background(), testUser.Email, "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := auth.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := auth.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrTokenNotRecognized) {
		t.Errorf("refresh after logout: want ErrTokenNotRecognized, got %v", err)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	auth := newAuth(singleUserRepo(), newMemoryTokenStore(), &fakeSender{})

	if err := auth.Logout(context.Background(), "garbage"); err != nil {
		t.Errorf("logout with garbage token: %v", err)
	}

	pair, err := auth.Login(context.Background(), testUser.Email, "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := auth.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if err := auth.Logout(context.Background(), pair.RefreshToken); err != nil {
		t.Errorf("second logout: %v", err)
	}
}
