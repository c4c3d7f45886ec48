package authn_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"notes_service/internal/http_server/middleware/authn"
	"notes_service/internal/lib/jwt"
	"notes_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newGate(t *testing.T) (http.Handler, *string) {
	t.Helper()

	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = authn.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return authn.New(log, testSecret)(next), &seenUserID
}

func doRequest(t *testing.T, gate http.Handler, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/note/getAll-note", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	rr := httptest.NewRecorder()
	gate.ServeHTTP(rr, req)
	return rr
}

func decodeMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.False(t, body.Success)
	return body.Message
}

func TestGate_MissingToken(t *testing.T) {
	t.Parallel()

	gate, _ := newGate(t)

	rr := doRequest(t, gate, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Auth token is missing", decodeMessage(t, rr))
}

func TestGate_EmptyBearer(t *testing.T) {
	t.Parallel()

	gate, _ := newGate(t)

	rr := doRequest(t, gate, "Bearer ")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Auth token is missing", decodeMessage(t, rr))
}

func TestGate_ExpiredToken(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewToken(models.User{ID: "u1", Email: "u1@example.com"}, testSecret, -time.Minute)
	require.NoError(t, err)

	gate, _ := newGate(t)

	rr := doRequest(t, gate, "Bearer "+tok)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Token has expired", decodeMessage(t, rr))
}

func TestGate_InvalidToken(t *testing.T) {
	t.Parallel()

	gate, _ := newGate(t)

	rr := doRequest(t, gate, "Bearer garbage.token.value")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid token", decodeMessage(t, rr))
}

func TestGate_ValidTokenInjectsUserID(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewToken(models.User{ID: "user-42", Email: "u@example.com"}, testSecret, time.Hour)
	require.NoError(t, err)

	gate, seen := newGate(t)

	rr := doRequest(t, gate, "Bearer "+tok)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "user-42", *seen)
}

func TestGate_Idempotent(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewToken(models.User{ID: "user-42", Email: "u@example.com"}, testSecret, time.Hour)
	require.NoError(t, err)

	gate, seen := newGate(t)

	rr := doRequest(t, gate, "Bearer "+tok)
	require.Equal(t, http.StatusOK, rr.Code)
	first := *seen

	rr = doRequest(t, gate, "Bearer "+tok)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, first, *seen)
}
