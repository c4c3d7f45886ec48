package add

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resp "notes_service/internal/lib/api/response"
	sl "notes_service/internal/lib/logger"
	"notes_service/internal/http_server/middleware/authn"
	"notes_service/internal/metrics"
	"notes_service/internal/models"
	"notes_service/internal/notes"
	"notes_service/internal/rabbitmq"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Title   string `json:"title" validate:"required,min=5"`
	Content string `json:"content" validate:"required,min=5"`
}

type Response struct {
	resp.Response
	Data *models.Note `json:"data,omitempty"`
}

type NoteCreator interface {
	Create(ctx context.Context, userID, title, content string) (models.Note, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	creator NoteCreator,
	events EventPublisher,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notes.add.New"

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

		note, err := creator.Create(ctx, userID, req.Title, req.Content)
		if err != nil {
			if errors.Is(err, notes.ErrNoUser) {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("make verified requests/login."))

				return
			}

			log.Error("failed to create note", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("note created", slog.String("note_id", note.ID))

		metrics.CreatedNotes.Inc()

		if err := events.Publish(ctx, models.Event{
			Type:   rabbitmq.EventNoteCreated,
			UserID: userID,
			NoteID: note.ID,
		}); err != nil {
			log.Error("failed to publish note created event", sl.Err(err))
		}

		ResponseOK(w, r, note)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, note models.Note) {
	render.JSON(w, r, Response{
		Response: resp.OK(),
		Data:     &note,
	})
}
