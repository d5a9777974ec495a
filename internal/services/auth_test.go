package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"nlschedule/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	byID   map[string]*domain.User
	nextID int
	getErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.Email == u.Email || existing.Username == u.Username {
			return fmt.Errorf("insert user: %w", domain.ErrDuplicateUser)
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

// plainHasher stores "salt:password" so tests stay fast.
type plainHasher struct{}

func (plainHasher) GenerateSalt() (string, error) { return "salt", nil }
func (plainHasher) Hash(salt, password string) (string, error) { return salt + ":" + password, nil }
func (plainHasher) Compare(hash, salt, password string) error {
	if hash != salt+":"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	return "token-for-" + userID, nil
}

type fakeEmailService struct {
	sent []*domain.WelcomeMessageEmailData
	err  error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.sent = append(f.sent, data)
	return f.err
}

func newTestAuthService(repo *fakeUserRepo, mail domain.EmailService) domain.AuthService {
	return NewAuthService(repo, plainHasher{}, fakeIssuer{}, time.Hour, mail,
		slog.New(slog.NewTextHandler(io.Discard, nil)), 5*time.Second)
}

func TestAuthService_Register(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeEmailService{}
	svc := newTestAuthService(repo, mail)

	user, token, err := svc.Register(context.Background(), " aki ", " Aki@Example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "aki", user.Username)
	assert.Equal(t, "aki@example.com", user.Email)
	assert.Equal(t, "salt:password123", user.PasswordHash)
	assert.Equal(t, "token-for-user-1", token)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "aki@example.com", mail.sent[0].Email)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name, username, email, password string
	}{
		{"bad email", "aki", "not-an-email", "password123"},
		{"display name email", "aki", "Aki <aki@example.com>", "password123"},
		{"short password", "aki", "aki@example.com", "short"},
		{"empty username", "  ", "aki@example.com", "password123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAuthService(newFakeUserRepo(), nil)
			_, _, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			assert.True(t, errors.Is(err, domain.ErrValidationFailed))
		})
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo, nil)
	_, _, err := svc.Register(context.Background(), "aki", "aki@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), "aki2", "aki@example.com", "password123")
	assert.Equal(t, domain.ErrDuplicateUser, err)
}

func TestAuthService_Register_MailFailureIsNotFatal(t *testing.T) {
	mail := &fakeEmailService{err: errors.New("ses down")}
	svc := newTestAuthService(newFakeUserRepo(), mail)

	user, token, err := svc.Register(context.Background(), "aki", "aki@example.com", "password123")
	require.NoError(t, err)
	assert.NotNil(t, user)
	assert.NotEmpty(t, token)
}

func TestAuthService_Login(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo, nil)
	_, _, err := svc.Register(context.Background(), "aki", "aki@example.com", "password123")
	require.NoError(t, err)

	user, token, err := svc.Login(context.Background(), "AKI@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "token-for-user-1", token)

	_, _, err = svc.Login(context.Background(), "aki@example.com", "wrong-password")
	assert.Equal(t, domain.ErrInvalidCredentials, err)

	_, _, err = svc.Login(context.Background(), "nobody@example.com", "password123")
	assert.Equal(t, domain.ErrInvalidCredentials, err, "unknown email must look like a bad password")

	repo.getErr = errors.New("db down")
	_, _, err = svc.Login(context.Background(), "aki@example.com", "password123")
	require.Error(t, err)
	assert.NotEqual(t, domain.ErrInvalidCredentials, err)
}

func TestAuthService_Me(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo, nil)
	registered, _, err := svc.Register(context.Background(), "aki", "aki@example.com", "password123")
	require.NoError(t, err)

	user, err := svc.Me(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "aki", user.Username)

	_, err = svc.Me(context.Background(), "user-404")
	assert.Equal(t, domain.ErrUserNotFound, err)
}
