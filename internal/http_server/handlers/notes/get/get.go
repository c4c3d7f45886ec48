package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"notes_service/internal/http_server/middleware/authn"
	resp "notes_service/internal/lib/api/response"
	sl "notes_service/internal/lib/logger"
	"notes_service/internal/models"
	"notes_service/internal/notes"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Data *models.Note `json:"data,omitempty"`
}

type NoteGetter interface {
	Get(ctx context.Context, userID, noteID string) (models.Note, error)
}

// New fetches a single note. The lookup is owner-scoped: someone else's
// note is reported as not found.
func New(
	log *slog.Logger,
	getter NoteGetter,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notes.get.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		noteID := chi.URLParam(r, "id")
		if noteID == "" {
			log.Warn("missing note id param")

			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("missing params. Invalid request"))

			return
		}

		userID := authn.UserID(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		note, err := getter.Get(ctx, userID, noteID)
		if err != nil {
			if errors.Is(err, notes.ErrNoteNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Note not found."))

				return
			}

			log.Error("failed to get note", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Data:     &note,
		})
	}
}
