package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/athletelink/athletelink/models"
	"github.com/athletelink/athletelink/repositories"
	"github.com/athletelink/athletelink/storage"
)

type UserService interface {
	GetProfileByID(ctx context.Context, id int) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
	UploadAvatar(ctx context.Context, userID int, contentType string, reader io.Reader) (*models.User, error)
}

type UpdateProfileInput struct {
	FirstName *string            `json:"first_name,omitempty"`
	LastName  *string            `json:"last_name,omitempty"`
	Telegram  *string            `json:"telegram,omitempty"`
	Gender    *models.UserGender `json:"gender,omitempty"`
	BirthDate *string            `json:"birth_date,omitempty"`
	City      *string            `json:"city,omitempty"`
	Bio       *string            `json:"bio,omitempty"`
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *userService) GetProfileByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}

	s.populateAvatarURL(user)
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id %d: %w", userID, err)
	}

	ve := newValidationError()
	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			ve.Fields["first_name"] = "this field is required"
		}
		user.FirstName = name
	}
	if input.LastName != nil {
		user.LastName = input.LastName
	}
	if input.Telegram != nil {
		telegram := strings.TrimSpace(*input.Telegram)
		if telegram == "" {
			ve.Fields["telegram"] = "this field is required"
		}
		user.Telegram = telegram
	}
	if input.Gender != nil {
		switch *input.Gender {
		case models.GenderMale, models.GenderFemale, models.GenderOther:
			user.Gender = input.Gender
		default:
			ve.Fields["gender"] = "must be one of: male female other"
		}
	}
	if input.BirthDate != nil {
		birthDate, parseErr := time.Parse("2006-01-02", *input.BirthDate)
		if parseErr != nil {
			ve.Fields["birth_date"] = "must be a date in YYYY-MM-DD format"
		} else {
			user.BirthDate = birthDate
		}
	}
	if input.City != nil {
		city := strings.TrimSpace(*input.City)
		if city == "" {
			ve.Fields["city"] = "this field is required"
		}
		user.City = city
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}

	if len(ve.Fields) > 0 {
		return nil, ve
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", userID, err)
	}

	s.populateAvatarURL(user)
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, contentType string, reader io.Reader) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id %d: %w", userID, err)
	}

	key := fmt.Sprintf("avatars/users/%d", userID)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to save avatar key: %w", err)
	}

	user.AvatarKey = &result.Key
	s.populateAvatarURL(user)
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) populateAvatarURL(user *models.User) {
	if s.uploader == nil || user.AvatarKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*user.AvatarKey)
	user.AvatarURL = &url
}
