package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"notes_service/internal/lib/jwt"
	"notes_service/internal/models"
	"notes_service/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type fakeStore struct {
	users  map[string]models.User // keyed by email
	tokens map[string]models.RefreshToken
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]models.User),
		tokens: make(map[string]models.RefreshToken),
	}
}

func (s *fakeStore) SaveUser(_ context.Context, user models.User) error {
	if _, ok := s.users[user.Email]; ok {
		return storage.ErrUserExists
	}
	s.users[user.Email] = user
	return nil
}

func (s *fakeStore) User(_ context.Context, email string) (models.User, error) {
	u, ok := s.users[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return u, nil
}

func (s *fakeStore) UserByID(_ context.Context, id string) (models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, storage.ErrUserNotFound
}

func (s *fakeStore) SaveRefreshToken(_ context.Context, token models.RefreshToken) error {
	s.tokens[token.ID] = token
	return nil
}

func (s *fakeStore) RefreshToken(_ context.Context, id string) (models.RefreshToken, error) {
	rt, ok := s.tokens[id]
	if !ok {
		return models.RefreshToken{}, storage.ErrRefreshTokenNotFound
	}
	return rt, nil
}

func (s *fakeStore) RevokeRefreshToken(_ context.Context, id string) error {
	rt := s.tokens[id]
	rt.Revoked = true
	s.tokens[id] = rt
	return nil
}

func newTestAuth(store *fakeStore) *Auth {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, store, store, store, testSecret, 15*time.Minute, 24*time.Hour)
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store)

	id, err := a.Register(context.Background(), "alice", "alice@example.com", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	saved := store.users["alice@example.com"]
	assert.Equal(t, id, saved.ID)
	assert.Equal(t, "alice", saved.Name)

	// The stored hash must verify the original password and never equal it.
	assert.NoError(t, bcrypt.CompareHashAndPassword(saved.PassHash, []byte("password1")))
	assert.NotEqual(t, "password1", string(saved.PassHash))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store)

	_, err := a.Register(context.Background(), "alice", "alice@example.com", "password1")
	require.NoError(t, err)

	_, err = a.Register(context.Background(), "alice2", "alice@example.com", "password2")
	require.ErrorIs(t, err, ErrUserExists)
}

func TestLogin_CredentialErrorsAreIndistinguishable(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store)

	_, err := a.Register(context.Background(), "alice", "alice@example.com", "password1")
	require.NoError(t, err)

	_, _, unknownErr := a.Login(context.Background(), "nobody@example.com", "password1")
	_, _, wrongPassErr := a.Login(context.Background(), "alice@example.com", "wrong-pass")

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongPassErr)
}

func TestLogin_IssuesAccessAndRefreshTokens(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store)

	_, err := a.Register(context.Background(), "alice", "alice@example.com", "password1")
	require.NoError(t, err)

	accessToken, refreshToken, err := a.Login(context.Background(), "alice@example.com", "password1")
	require.NoError(t, err)

	claims, err := jwt.ParseToken(accessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, store.users["alice@example.com"].ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 2*time.Second)

	stored, ok := store.tokens[refreshToken.ID]
	require.True(t, ok, "refresh token must be persisted")
	assert.False(t, stored.Revoked)
	assert.True(t, stored.IsActive())
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), stored.ExpiresAt, 2*time.Second)
}

func TestLogout_RevokesOnlyOnce(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store)

	_, err := a.Register(context.Background(), "alice", "alice@example.com", "password1")
	require.NoError(t, err)

	_, refreshToken, err := a.Login(context.Background(), "alice@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, a.Logout(context.Background(), refreshToken.ID))
	assert.True(t, store.tokens[refreshToken.ID].Revoked)

	// Second attempt with the now-revoked id fails the active check.
	err = a.Logout(context.Background(), refreshToken.ID)
	require.ErrorIs(t, err, ErrTokenExpiredOrRevoked)
}

func TestLogout_UnknownToken(t *testing.T) {
	t.Parallel()

	a := newTestAuth(newFakeStore())

	err := a.Logout(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_MalformedTokenID(t *testing.T) {
	t.Parallel()

	a := newTestAuth(newFakeStore())

	err := a.Logout(context.Background(), "doctored-cookie-value")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_ExpiredToken(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store)

	expiredID := uuid.NewString()
	store.tokens[expiredID] = models.RefreshToken{
		ID:        expiredID,
		UserID:    "u1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	err := a.Logout(context.Background(), expiredID)
	require.ErrorIs(t, err, ErrTokenExpiredOrRevoked)
	assert.False(t, store.tokens[expiredID].Revoked, "an expired token must not be re-revoked")
}

func TestRefreshAccess_ActiveToken(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store)

	_, err := a.Register(context.Background(), "alice", "alice@example.com", "password1")
	require.NoError(t, err)

	_, refreshToken, err := a.Login(context.Background(), "alice@example.com", "password1")
	require.NoError(t, err)

	accessToken, err := a.RefreshAccess(context.Background(), refreshToken.ID)
	require.NoError(t, err)

	claims, err := jwt.ParseToken(accessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, refreshToken.UserID, claims.UserID)

	// No rotation: the original refresh token stays active.
	stored := store.tokens[refreshToken.ID]
	assert.True(t, stored.IsActive())
}

func TestRefreshAccess_RevokedToken(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	a := newTestAuth(store)

	_, err := a.Register(context.Background(), "alice", "alice@example.com", "password1")
	require.NoError(t, err)

	_, refreshToken, err := a.Login(context.Background(), "alice@example.com", "password1")
	require.NoError(t, err)
	require.NoError(t, a.Logout(context.Background(), refreshToken.ID))

	_, err = a.RefreshAccess(context.Background(), refreshToken.ID)
	require.ErrorIs(t, err, ErrTokenExpiredOrRevoked)
}

func TestRefreshAccess_MalformedTokenID(t *testing.T) {
	t.Parallel()

	a := newTestAuth(newFakeStore())

	_, err := a.RefreshAccess(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, ErrInvalidToken)
}
