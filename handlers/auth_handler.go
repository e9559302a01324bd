package handlers

import (
	"errors"
	"net/http"

	"github.com/athletelink/athletelink/middleware"
	"github.com/athletelink/athletelink/services"
)

type AuthHandler struct {
	authService         services.AuthService
	verificationService services.VerificationService
}

func NewAuthHandler(authService services.AuthService, verificationService services.VerificationService) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		verificationService: verificationService,
	}
}

// Register создаёт аккаунт. Код подтверждения сверяется с кодом,
// выданным этой же сессии, до валидации остальных полей.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.GetSessionIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), sessionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SendVerificationCode выдаёт одноразовый код и отправляет его на почту.
// Повторный запрос перезаписывает предыдущий код сессии.
func (h *AuthHandler) SendVerificationCode(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.GetSessionIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var input struct {
		Email string `json:"email"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Email == "" {
		badRequestResponse(w, r, errors.New("email is required"))
		return
	}

	if err := h.verificationService.IssueCode(r.Context(), sessionID, input.Email); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"message": "verification code has been sent"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.GetSessionIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Login == "" || input.Password == "" {
		badRequestResponse(w, r, errors.New("login and password are required"))
		return
	}

	user, err := h.authService.Login(r.Context(), sessionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID, err := middleware.GetSessionIDFromContext(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := h.authService.Logout(r.Context(), sessionID); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	// Сбрасываем cookie: следующая сессия получит новый идентификатор.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "logged out"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
