package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/athletelink/athletelink/models"
	"github.com/athletelink/athletelink/repositories"
	"github.com/athletelink/athletelink/sessions"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Register(ctx context.Context, sessionID string, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, sessionID string, input LoginInput) (*models.User, error)
	Logout(ctx context.Context, sessionID string) error
	GetUserByID(ctx context.Context, id int) (*models.User, error)
}

type RegisterInput struct {
	Email            string             `json:"email" validate:"required,email"`
	Password         string             `json:"password" validate:"required"`
	PasswordConfirm  string             `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName        string             `json:"first_name" validate:"required,max=100"`
	LastName         *string            `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Nickname         string             `json:"nickname" validate:"required,max=50"`
	Telegram         string             `json:"telegram" validate:"required,max=100"`
	Gender           *models.UserGender `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	BirthDate        string             `json:"birth_date" validate:"required,datetime=2006-01-02"`
	City             string             `json:"city" validate:"required,max=100"`
	Bio              *string            `json:"bio,omitempty"`
	VerificationCode string             `json:"verification_code"`
}

type LoginInput struct {
	// Login принимает email или никнейм.
	Login    string `json:"login"`
	Password string `json:"password"`
}

type authService struct {
	userRepo     repositories.UserRepository
	sessionStore sessions.Store
	validate     *validator.Validate
}

func NewAuthService(userRepo repositories.UserRepository, sessionStore sessions.Store) AuthService {
	validate := validator.New()
	// В сообщениях об ошибках используем имена полей из json-тегов.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &authService{
		userRepo:     userRepo,
		sessionStore: sessionStore,
		validate:     validate,
	}
}

// Register выполняет регистрацию: сначала сверяет код подтверждения с кодом,
// выданным этой сессии, затем валидирует данные формы и создаёт аккаунт.
// При несовпадении кода данные формы не валидируются и не сохраняются.
func (s *authService) Register(ctx context.Context, sessionID string, input RegisterInput) (*models.User, error) {
	pendingCode, err := s.sessionStore.VerificationCode(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read pending verification code: %w", err)
	}
	if input.VerificationCode != pendingCode {
		return nil, ErrInvalidVerificationCode
	}

	if err := s.validateRegisterInput(input); err != nil {
		return nil, err
	}

	birthDate, err := time.Parse("2006-01-02", input.BirthDate)
	if err != nil {
		// Формат уже проверен валидатором, сюда попадать не должны.
		return nil, fmt.Errorf("failed to parse birth date: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Email:        strings.TrimSpace(input.Email),
		Nickname:     strings.TrimSpace(input.Nickname),
		PasswordHash: string(hashedPassword),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     input.LastName,
		Telegram:     strings.TrimSpace(input.Telegram),
		Gender:       input.Gender,
		BirthDate:    birthDate,
		City:         strings.TrimSpace(input.City),
		Bio:          input.Bio,
		IsActive:     true,
		IsStaff:      false,
		IsSuperuser:  false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Конфликты уникальности отдаём как пофилевые ошибки формы.
		switch {
		case errors.Is(err, repositories.ErrUserEmailConflict):
			ve := newValidationError()
			ve.Fields["email"] = ErrUserEmailConflict.Error()
			return nil, ve
		case errors.Is(err, repositories.ErrUserNicknameConflict):
			ve := newValidationError()
			ve.Fields["nickname"] = ErrUserNicknameConflict.Error()
			return nil, ve
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	if err := s.sessionStore.SetUserID(ctx, sessionID, user.ID); err != nil {
		return nil, fmt.Errorf("failed to authenticate session: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login разрешает идентификатор в аккаунт упорядоченным перебором стратегий
// поиска: сначала по email, затем по никнейму. Неизвестный идентификатор и
// неверный пароль дают одну и ту же ошибку.
func (s *authService) Login(ctx context.Context, sessionID string, input LoginInput) (*models.User, error) {
	user, err := s.resolveUser(ctx, input.Login)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to resolve user by login: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	if !user.IsActive {
		return nil, ErrAuthInactiveAccount
	}

	if err := s.sessionStore.SetUserID(ctx, sessionID, user.ID); err != nil {
		return nil, fmt.Errorf("failed to authenticate session: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessionStore.Destroy(ctx, sessionID)
}

// GetUserByID восстанавливает аккаунт по идентификатору из сессии.
func (s *authService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	user.PasswordHash = ""
	return user, nil
}

// resolveUser перебирает стратегии поиска по порядку до первого совпадения.
// Список легко расширяется новыми типами идентификаторов.
func (s *authService) resolveUser(ctx context.Context, login string) (*models.User, error) {
	lookups := []func(context.Context, string) (*models.User, error){
		s.userRepo.GetByEmail,
		s.userRepo.GetByNickname,
	}

	for _, lookup := range lookups {
		user, err := lookup(ctx, login)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, err
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (s *authService) validateRegisterInput(input RegisterInput) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("registration input validation: %w", err)
	}

	ve := newValidationError()
	for _, fieldErr := range validationErrors {
		ve.Fields[fieldErr.Field()] = registerFieldMessage(fieldErr)
	}
	return ve
}

func registerFieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "eqfield":
		return "passwords do not match"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + fieldErr.Param()
	case "max":
		return "must be at most " + fieldErr.Param() + " characters long"
	default:
		return "is invalid"
	}
}
