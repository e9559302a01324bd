package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/athletelink/athletelink/models"
	"github.com/athletelink/athletelink/repositories"
)

// RatingService читает и записывает агрегированные рейтинги пользователей
// по видам спорта. Пересчёт агрегата из оценок участников здесь намеренно
// отсутствует: значения хранятся как есть.
type RatingService interface {
	ListUserRatings(ctx context.Context, userID int) ([]models.UserRating, error)
	SetUserRating(ctx context.Context, input SetUserRatingInput) (*models.UserRating, error)
}

type SetUserRatingInput struct {
	UserID       int     `json:"user_id"`
	SportID      int     `json:"sport_id"`
	Rating       float64 `json:"rating"`
	RatingsCount int     `json:"ratings_count"`
}

type ratingService struct {
	ratingRepo repositories.RatingRepository
}

func NewRatingService(ratingRepo repositories.RatingRepository) RatingService {
	return &ratingService{ratingRepo: ratingRepo}
}

func (s *ratingService) ListUserRatings(ctx context.Context, userID int) ([]models.UserRating, error) {
	ratings, err := s.ratingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings for user %d: %w", userID, err)
	}
	return ratings, nil
}

func (s *ratingService) SetUserRating(ctx context.Context, input SetUserRatingInput) (*models.UserRating, error) {
	if input.Rating < 0 || input.Rating > 5 {
		return nil, ErrRatingOutOfRange
	}
	if input.RatingsCount < 0 {
		return nil, ErrRatingOutOfRange
	}

	rating := &models.UserRating{
		UserID:       input.UserID,
		SportID:      input.SportID,
		Rating:       input.Rating,
		RatingsCount: input.RatingsCount,
	}

	if err := s.ratingRepo.Upsert(ctx, rating); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRatingUserInvalid):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrRatingSportInvalid):
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to upsert rating: %w", err)
	}
	return rating, nil
}
