package remove

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

type NoteDeleter interface {
	Delete(ctx context.Context, userID, noteID string) (models.Note, error)
}

// New deletes the note. A failed owner-scoped lookup aborts the request;
// the delete statement is never reached for a note the caller does not own.
func New(
	log *slog.Logger,
	deleter NoteDeleter,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notes.remove.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		noteID := chi.URLParam(r, "id")
		if noteID == "" {
			log.Warn("missing note id param")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("missing params. Invalid request"))

			return
		}

		userID := authn.UserID(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		note, err := deleter.Delete(ctx, userID, noteID)
		if err != nil {
			if errors.Is(err, notes.ErrNotOwner) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("could not find notes or either notes does not belong to user"))

				return
			}

			log.Error("failed to delete note", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("note deleted", slog.String("note_id", note.ID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Data:     &note,
		})
	}
}
