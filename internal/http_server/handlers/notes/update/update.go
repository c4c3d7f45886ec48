package update

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

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	ID      string `json:"id" validate:"required"`
	Title   string `json:"title" validate:"required,min=5"`
	Content string `json:"content" validate:"required,min=5"`
}

type Response struct {
	resp.Response
	Data *models.Note `json:"data,omitempty"`
}

type NoteUpdater interface {
	Update(ctx context.Context, userID, noteID, title, content string) (models.Note, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	updater NoteUpdater,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notes.update.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		userID := authn.UserID(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		note, err := updater.Update(ctx, userID, req.ID, req.Title, req.Content)
		if err != nil {
			if errors.Is(err, notes.ErrNoteNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("Note not found."))

				return
			}
			if errors.Is(err, notes.ErrNotOwner) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("You do not own this note."))

				return
			}

			log.Error("failed to update note", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("note updated", slog.String("note_id", note.ID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Data:     &note,
		})
	}
}
