package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/athletelink/athletelink/sessions"
)

type contextKey string

const (
	sessionIDContextKey contextKey = "session_id"
	userIDContextKey    contextKey = "user_id"
)

// SessionCookieName — имя cookie с идентификатором сессии.
const SessionCookieName = "athletelink_session"

// Session гарантирует, что у запроса есть идентификатор сессии:
// берёт его из cookie или выпускает новый и ставит cookie в ответ.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		}

		if sessionID == "" {
			newID, err := sessions.NewID()
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, "failed to initialize session")
				return
			}
			sessionID = newID
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionIDContextKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionIDFromContext возвращает идентификатор сессии запроса.
func GetSessionIDFromContext(ctx context.Context) (string, error) {
	sessionID, ok := ctx.Value(sessionIDContextKey).(string)
	if !ok || sessionID == "" {
		return "", errors.New("session id not found in context")
	}
	return sessionID, nil
}

// GetUserIDFromContext возвращает идентификатор аутентифицированного
// пользователя, положенный туда RequireAuth.
func GetUserIDFromContext(ctx context.Context) (int, error) {
	userID, ok := ctx.Value(userIDContextKey).(int)
	if !ok || userID <= 0 {
		return 0, errors.New("user id not found in context")
	}
	return userID, nil
}
