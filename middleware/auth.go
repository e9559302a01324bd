package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/athletelink/athletelink/models"
	"github.com/athletelink/athletelink/sessions"
)

// UserLoader восстанавливает аккаунт по идентификатору из сессии.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int) (*models.User, error)
}

// RequireAuth пропускает только запросы с аутентифицированной сессией
// и кладёт идентификатор пользователя в контекст.
func RequireAuth(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, err := GetSessionIDFromContext(r.Context())
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			userID, err := store.UserID(r.Context(), sessionID)
			if err != nil {
				if errors.Is(err, sessions.ErrNotAuthenticated) {
					writeJSONError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				writeJSONError(w, http.StatusInternalServerError, "failed to load session")
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff пропускает только персонал. Ставится после RequireAuth.
func RequireStaff(loader UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := GetUserIDFromContext(r.Context())
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			user, err := loader.GetUserByID(r.Context(), userID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !user.IsStaff && !user.IsSuperuser {
				writeJSONError(w, http.StatusForbidden, "staff access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
