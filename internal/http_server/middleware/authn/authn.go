package authn

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	resp "notes_service/internal/lib/api/response"
	"notes_service/internal/lib/jwt"
	sl "notes_service/internal/lib/logger"

	"github.com/go-chi/render"
)

type ctxKey struct{}

var userIDKey ctxKey

// New returns a gate that rejects any request without a valid Bearer access
// token and puts the token's user id into the request context. The check is
// stateless: a token stays valid until its natural expiry even after logout.
func New(log *slog.Logger, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn"

			log := log.With(slog.String("op", op))

			authHeader := r.Header.Get("Authorization")
			raw := strings.TrimPrefix(authHeader, "Bearer ")
			if !strings.HasPrefix(authHeader, "Bearer ") || raw == "" {
				log.Warn("missing auth token")

				unauthorized(w, r, "Auth token is missing")
				return
			}

			claims, err := jwt.ParseToken(raw, secret)
			if err != nil {
				log.Warn("token verification failed", sl.Err(err))

				if errors.Is(err, jwt.ErrTokenExpired) {
					unauthorized(w, r, "Token has expired")
					return
				}

				unauthorized(w, r, "Invalid token")
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID returns the authenticated user id or "" when the request never
// passed the gate.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Error(msg))
}
