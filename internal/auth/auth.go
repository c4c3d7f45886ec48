package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"notes_service/internal/lib/jwt"
	sl "notes_service/internal/lib/logger"
	"notes_service/internal/models"
	"notes_service/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrUserExists            = errors.New("user already exists")
	ErrInvalidToken          = errors.New("invalid refresh token")
	ErrTokenExpiredOrRevoked = errors.New("refresh token expired or revoked")
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	sessions    SessionStore
	jwtSecret   string
	tokenTTL    time.Duration
	refreshTTL  time.Duration
}

type UserSaver interface {
	SaveUser(ctx context.Context, user models.User) error
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
}

type SessionStore interface {
	SaveRefreshToken(ctx context.Context, token models.RefreshToken) error
	RefreshToken(ctx context.Context, id string) (models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string) error
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	sessions SessionStore,
	jwtSecret string,
	tokenTTL, refreshTTL time.Duration,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		sessions:    sessions,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		refreshTTL:  refreshTTL,
	}
}

func (a *Auth) Register(
	ctx context.Context,
	name, email, password string,
) (string, error) {
	const op = "auth.Register"

	log := a.log.With(
		slog.String("op", op),
	)

	log.Info("registering new user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		PassHash:  passHash,
		CreatedAt: time.Now(),
	}

	// Uniqueness is enforced by the unique index on email, not by a
	// lookup first: concurrent registrations race otherwise.
	if err := a.usrSaver.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")

			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return user.ID, nil
}

// Login checks the credentials and returns an access token together with the
// persisted refresh-token record. Unknown email and wrong password collapse
// into the same error so the response never tells which one failed.
func (a *Auth) Login(
	ctx context.Context,
	email, password string,
) (string, models.RefreshToken, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return "", models.RefreshToken{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return "", models.RefreshToken{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return "", models.RefreshToken{}, ErrInvalidCredentials
	}

	accessToken, err := jwt.NewToken(user, a.jwtSecret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return "", models.RefreshToken{}, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken := models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(a.refreshTTL),
		Revoked:   false,
		CreatedAt: time.Now(),
	}

	// The access token is not returned unless the refresh record made it
	// to the store.
	if err := a.sessions.SaveRefreshToken(ctx, refreshToken); err != nil {
		log.Error("failed to save refresh token", sl.Err(err))
		return "", models.RefreshToken{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.String("uid", user.ID))
	return accessToken, refreshToken, nil
}

// RefreshAccess exchanges an active refresh-token id for a new access token.
// The refresh token itself is not rotated.
func (a *Auth) RefreshAccess(
	ctx context.Context,
	refreshTokenID string,
) (string, error) {
	const op = "auth.RefreshAccess"

	log := a.log.With(slog.String("op", op))

	// A malformed id can never match a row; the uuid column would reject
	// it with a syntax error instead of a clean miss.
	if _, err := uuid.Parse(refreshTokenID); err != nil {
		log.Warn("malformed refresh token id")
		return "", ErrInvalidToken
	}

	rt, err := a.sessions.RefreshToken(ctx, refreshTokenID)
	if err != nil {
		if errors.Is(err, storage.ErrRefreshTokenNotFound) {
			log.Warn("refresh token not found")
			return "", ErrInvalidToken
		}

		log.Error("failed to get refresh token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !rt.IsActive() {
		log.Warn("refresh token expired or revoked")
		return "", ErrTokenExpiredOrRevoked
	}

	user, err := a.usrProvider.UserByID(ctx, rt.UserID)
	if err != nil {
		log.Error("failed to load user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	accessToken, err := jwt.NewToken(user, a.jwtSecret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("access token refreshed", slog.String("uid", user.ID))

	return accessToken, nil
}

func (a *Auth) Logout(
	ctx context.Context,
	refreshTokenID string,
) error {
	const op = "auth.Logout"

	log := a.log.With(
		slog.String("op", op),
	)

	if _, err := uuid.Parse(refreshTokenID); err != nil {
		log.Warn("malformed refresh token id")
		return ErrInvalidToken
	}

	rt, err := a.sessions.RefreshToken(ctx, refreshTokenID)
	if err != nil {
		if errors.Is(err, storage.ErrRefreshTokenNotFound) {
			log.Warn("refresh token not found")
			return ErrInvalidToken
		}

		log.Error("failed to get refresh token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if !rt.IsActive() {
		log.Warn("refresh token already expired or revoked")
		return ErrTokenExpiredOrRevoked
	}

	if err := a.sessions.RevokeRefreshToken(ctx, rt.ID); err != nil {
		log.Error("failed to revoke refresh token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("logout successful")

	return nil
}
