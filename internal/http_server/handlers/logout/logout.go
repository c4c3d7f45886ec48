package logout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"notes_service/internal/auth"
	resp "notes_service/internal/lib/api/response"
	sl "notes_service/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const refreshCookie = "refreshToken"

type Response struct {
	resp.Response
}

type SessionEnder interface {
	Logout(ctx context.Context, refreshTokenID string) error
}

// New ends the session named by the refreshToken cookie. Logout is
// idempotent in effect: a repeated call fails the active check with 400
// rather than revoking twice.
func New(
	log *slog.Logger,
	sessions SessionEnder,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		cookie, err := r.Cookie(refreshCookie)
		if err != nil {
			log.Warn("trying to logout without the refreshToken cookie")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("No refresh cookie could be found"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := sessions.Logout(ctx, cookie.Value); err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				log.Warn("invalid refresh token provided by user")

				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Invalid refresh token!"))

				return
			}
			if errors.Is(err, auth.ErrTokenExpiredOrRevoked) {
				log.Warn("expired or revoked refresh token provided by user")

				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Expired or already used refresh tokens"))

				return
			}

			log.Error("failed to logout user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     refreshCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})

		log.Info("user logged out successfully")

		ResponseOK(w, r)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, Response{
		Response: resp.OKMessage("logged out successfully"),
	})
}
