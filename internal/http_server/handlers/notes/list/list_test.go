package list_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"notes_service/internal/http_server/handlers/notes/list"
	"notes_service/internal/http_server/middleware/authn"
	"notes_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	notes      []models.Note
	pagination models.Pagination
	err        error

	gotPage     int
	gotPageSize int
}

func (f *fakeLister) List(_ context.Context, _ string, page, pageSize int) ([]models.Note, models.Pagination, error) {
	f.gotPage = page
	f.gotPageSize = pageSize
	return f.notes, f.pagination, f.err
}

func newHandler(lister *fakeLister) http.HandlerFunc {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return list.New(log, lister)
}

func doList(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(authn.WithUserID(req.Context(), "user-1"))

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestList_Success(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{
		notes: []models.Note{
			{ID: "n2", UserID: "user-1", Title: "newer"},
			{ID: "n1", UserID: "user-1", Title: "older"},
		},
		pagination: models.Pagination{Page: 2, PageSize: 2, TotalNotes: 5, TotalPages: 3},
	}

	rr := doList(t, newHandler(lister), "/api/note/getAll-note?page=2&pageSize=2")
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, 2, lister.gotPage)
	assert.Equal(t, 2, lister.gotPageSize)

	var body struct {
		Success    bool              `json:"success"`
		Data       []models.Note     `json:"data"`
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 2)
	assert.Equal(t, "n2", body.Data[0].ID)
	assert.Equal(t, int64(5), body.Pagination.TotalNotes)
	assert.Equal(t, int64(3), body.Pagination.TotalPages)
}

func TestList_EmptyPageIsArray(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{
		notes:      nil,
		pagination: models.Pagination{Page: 1, PageSize: 10},
	}

	rr := doList(t, newHandler(lister), "/api/note/getAll-note")
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Contains(t, rr.Body.String(), `"data":[]`)
}

func TestList_BadQueryFallsBackToDefaults(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{pagination: models.Pagination{Page: 1, PageSize: 10}}

	rr := doList(t, newHandler(lister), "/api/note/getAll-note?page=abc&pageSize=")
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, 1, lister.gotPage)
	assert.Equal(t, 10, lister.gotPageSize)
}

func TestList_StoreError(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{err: errors.New("db down")}

	rr := doList(t, newHandler(lister), "/api/note/getAll-note")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
