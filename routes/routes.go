package routes

import (
	"net/http"

	"github.com/athletelink/athletelink/handlers"
	"github.com/athletelink/athletelink/middleware"
	"github.com/athletelink/athletelink/sessions"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes собирает все маршруты приложения.
// Session ставится глобально: идентификатор сессии нужен даже анонимным
// запросам (код подтверждения выдаётся до регистрации).
func SetupRoutes(
	router *chi.Mux,
	sessionStore sessions.Store,
	userLoader middleware.UserLoader,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	sportHandler *handlers.SportHandler,
	eventHandler *handlers.EventHandler,
	participantHandler *handlers.ParticipantHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Use(middleware.Session)

	router.NotFound(jsonNotFound)
	router.MethodNotAllowed(jsonMethodNotAllowed)

	requireAuth := middleware.RequireAuth(sessionStore)
	requireStaff := middleware.RequireStaff(userLoader)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/verification-code", authHandler.SendVerificationCode)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
	})

	router.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", userHandler.Me)
			r.Patch("/me", userHandler.UpdateMe)
			r.Post("/me/avatar", userHandler.UploadAvatar)
		})

		r.Get("/{userID}", userHandler.GetUserByID)
		r.Get("/{userID}/ratings", userHandler.GetUserRatings)

		// Перезапись агрегата рейтинга — только для персонала.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireStaff)
			r.Put("/{userID}/ratings", userHandler.SetUserRating)
		})
	})

	router.Route("/sports", func(r chi.Router) {
		r.Get("/", sportHandler.GetAllSports)
		r.Get("/{sportID}", sportHandler.GetSportByID)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth, requireStaff)
			r.Post("/", sportHandler.CreateSport)
			r.Put("/{sportID}", sportHandler.UpdateSport)
			r.Post("/{sportID}/logo", sportHandler.UploadLogo)
			r.Delete("/{sportID}", sportHandler.DeleteSport)
		})
	})

	router.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{eventID}", eventHandler.GetEventByID)
		r.Get("/{eventID}/participants", participantHandler.ListParticipants)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", eventHandler.CreateEvent)
			r.Patch("/{eventID}/status", eventHandler.UpdateEventStatus)
			r.Delete("/{eventID}", eventHandler.DeleteEvent)

			r.Post("/{eventID}/participants", participantHandler.JoinEvent)
			r.Delete("/{eventID}/participants/me", participantHandler.LeaveEvent)
			r.Patch("/{eventID}/participants/{participantID}/status", participantHandler.ChangeStatus)
			r.Put("/{eventID}/participants/{participantID}/rating", participantHandler.RateParticipant)
		})
	})

	router.Get("/ws/events/{eventID}", webSocketHandler.ServeEventRoom)
}

func jsonNotFound(w http.ResponseWriter, r *http.Request) {
	writeErrorJSON(w, http.StatusNotFound, "the requested resource could not be found")
}

func jsonMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeErrorJSON(w, http.StatusMethodNotAllowed, r.Method+" method is not supported for this resource")
}

func writeErrorJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error": "` + message + `"}` + "\n"))
}
