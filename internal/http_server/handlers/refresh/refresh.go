package refresh

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
	AccessToken string `json:"accessToken,omitempty"`
}

type AccessRefresher interface {
	RefreshAccess(ctx context.Context, refreshTokenID string) (string, error)
}

// New mints a new access token for the session named by the refreshToken
// cookie. The refresh token is not rotated.
func New(
	log *slog.Logger,
	refresher AccessRefresher,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.refresh.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		cookie, err := r.Cookie(refreshCookie)
		if err != nil {
			log.Warn("trying to refresh without the refreshToken cookie")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("No refresh cookie could be found"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		accessToken, err := refresher.RefreshAccess(ctx, cookie.Value)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Invalid refresh token!"))

				return
			}
			if errors.Is(err, auth.ErrTokenExpiredOrRevoked) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Expired or already used refresh tokens"))

				return
			}

			log.Error("failed to refresh access token", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("access token refreshed")

		ResponseOK(w, r, accessToken)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, accessToken string) {
	render.JSON(w, r, Response{
		Response:    resp.OK(),
		AccessToken: accessToken,
	})
}
