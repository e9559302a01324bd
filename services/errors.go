package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки аутентификации. Неизвестный логин и неверный пароль
	// намеренно неразличимы для вызывающего.
	ErrAuthInvalidCredentials = errors.New("invalid login or password")
	ErrAuthInactiveAccount    = errors.New("account is inactive")

	// Ошибки регистрации
	ErrInvalidVerificationCode = errors.New("invalid verification code")

	// Ошибки конфликтов
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserNicknameConflict = errors.New("nickname is already in use")
	ErrSportNameConflict    = errors.New("sport name already exists")
	ErrParticipantConflict  = errors.New("user is already registered for this event")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound        = errors.New("user not found")
	ErrSportNotFound       = errors.New("sport not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrRatingNotFound      = errors.New("rating not found")

	// Ошибки валидации и бизнес-правил
	ErrSportNameRequired            = errors.New("sport name is required")
	ErrSportInUse                   = errors.New("sport cannot be deleted as it is currently in use")
	ErrEventAddressRequired         = errors.New("event address is required")
	ErrEventDateRequired            = errors.New("event date is required")
	ErrEventInvalidPlayersCount     = errors.New("event required players must be positive")
	ErrEventInvalidStatus           = errors.New("invalid event status provided")
	ErrEventInvalidStatusTransition = errors.New("invalid event status transition")
	ErrEventRegistrationClosed      = errors.New("event is not open for registration")
	ErrEventFull                    = errors.New("event has no free player slots")
	ErrRatingOutOfRange             = errors.New("rating must be between 0 and 5")

	// Ошибки авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Ошибка внешнего почтового транспорта. Текст причины
	// отдаётся вызывающему как есть.
	ErrMailDeliveryFailed = errors.New("failed to send email")
)

// ValidationError несёт пофилевые сообщения для повторного показа формы.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}
