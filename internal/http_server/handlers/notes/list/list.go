package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"notes_service/internal/http_server/middleware/authn"
	resp "notes_service/internal/lib/api/response"
	sl "notes_service/internal/lib/logger"
	"notes_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	Data       []models.Note      `json:"data"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

type NoteLister interface {
	List(ctx context.Context, userID string, page, pageSize int) ([]models.Note, models.Pagination, error)
}

func New(
	log *slog.Logger,
	lister NoteLister,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.notes.list.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		page := queryInt(r, "page", 1)
		pageSize := queryInt(r, "pageSize", 10)

		userID := authn.UserID(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, pagination, err := lister.List(ctx, userID, page, pageSize)
		if err != nil {
			log.Error("failed to list notes", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		// An empty page serializes as [] rather than null.
		if list == nil {
			list = []models.Note{}
		}

		render.JSON(w, r, Response{
			Response:   resp.OK(),
			Data:       list,
			Pagination: &pagination,
		})
	}
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}
