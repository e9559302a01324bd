package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/athletelink/athletelink/handlers"
	"github.com/athletelink/athletelink/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRouter собирает роутер с пустыми обработчиками: проверяется
// поведение самого роутера, до диспетчеризации в сервисы.
func newTestRouter() *chi.Mux {
	router := chi.NewRouter()
	SetupRoutes(
		router,
		sessions.NewMemoryStore(),
		nil,
		handlers.NewAuthHandler(nil, nil),
		handlers.NewUserHandler(nil, nil),
		handlers.NewSportHandler(nil),
		handlers.NewEventHandler(nil),
		handlers.NewParticipantHandler(nil),
		handlers.NewWebSocketHandler(nil, nil),
	)
	return router
}

func doRequest(t *testing.T, router *chi.Mux, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload["error"]
}

func TestRouter_MethodNotAllowedIsJSON(t *testing.T) {
	router := newTestRouter()

	// Выдача кода доступна только по POST
	rec := doRequest(t, router, http.MethodGet, "/auth/verification-code")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, decodeError(t, rec), "GET")
}

func TestRouter_NotFoundIsJSON(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/no-such-route")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, decodeError(t, rec))
}

func TestRouter_ProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter()

	for _, target := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users/me"},
		{http.MethodPost, "/events/"},
		{http.MethodPost, "/sports/"},
	} {
		rec := doRequest(t, router, target.method, target.path)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", target.method, target.path)
	}
}

func TestRouter_AnonymousSessionCookieIsIssued(t *testing.T) {
	router := newTestRouter()

	rec := doRequest(t, router, http.MethodGet, "/no-such-route")

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.NotEmpty(t, cookies[0].Value)
}
