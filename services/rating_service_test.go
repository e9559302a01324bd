package services

import (
	"context"
	"testing"

	"github.com/athletelink/athletelink/models"
	"github.com/athletelink/athletelink/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRatingRepo struct {
	ratings map[[2]int]*models.UserRating

	validUsers  map[int]bool
	validSports map[int]bool
}

func newFakeRatingRepo() *fakeRatingRepo {
	return &fakeRatingRepo{
		ratings:     make(map[[2]int]*models.UserRating),
		validUsers:  make(map[int]bool),
		validSports: make(map[int]bool),
	}
}

func (r *fakeRatingRepo) Upsert(_ context.Context, rating *models.UserRating) error {
	if !r.validUsers[rating.UserID] {
		return repositories.ErrRatingUserInvalid
	}
	if !r.validSports[rating.SportID] {
		return repositories.ErrRatingSportInvalid
	}
	clone := *rating
	r.ratings[[2]int{rating.UserID, rating.SportID}] = &clone
	return nil
}

func (r *fakeRatingRepo) GetByUserAndSport(_ context.Context, userID, sportID int) (*models.UserRating, error) {
	rating, ok := r.ratings[[2]int{userID, sportID}]
	if !ok {
		return nil, repositories.ErrRatingNotFound
	}
	clone := *rating
	return &clone, nil
}

func (r *fakeRatingRepo) ListByUser(_ context.Context, userID int) ([]models.UserRating, error) {
	var ratings []models.UserRating
	for _, rating := range r.ratings {
		if rating.UserID == userID {
			ratings = append(ratings, *rating)
		}
	}
	return ratings, nil
}

func TestSetUserRating_Bounds(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRatingRepo()
	repo.validUsers[1] = true
	repo.validSports[1] = true

	svc := NewRatingService(repo)

	_, err := svc.SetUserRating(ctx, SetUserRatingInput{UserID: 1, SportID: 1, Rating: 5.1})
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	_, err = svc.SetUserRating(ctx, SetUserRatingInput{UserID: 1, SportID: 1, Rating: -0.1})
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	_, err = svc.SetUserRating(ctx, SetUserRatingInput{UserID: 1, SportID: 1, Rating: 4, RatingsCount: -1})
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	rating, err := svc.SetUserRating(ctx, SetUserRatingInput{UserID: 1, SportID: 1, Rating: 4.5, RatingsCount: 10})
	require.NoError(t, err)
	assert.Equal(t, 4.5, rating.Rating)
	assert.Equal(t, 10, rating.RatingsCount)
}

func TestSetUserRating_OverwritesExisting(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRatingRepo()
	repo.validUsers[1] = true
	repo.validSports[1] = true

	svc := NewRatingService(repo)

	_, err := svc.SetUserRating(ctx, SetUserRatingInput{UserID: 1, SportID: 1, Rating: 3, RatingsCount: 4})
	require.NoError(t, err)

	// Значение перезаписывается целиком, без пересчёта
	_, err = svc.SetUserRating(ctx, SetUserRatingInput{UserID: 1, SportID: 1, Rating: 4.2, RatingsCount: 5})
	require.NoError(t, err)

	stored, err := repo.GetByUserAndSport(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 4.2, stored.Rating)
	assert.Equal(t, 5, stored.RatingsCount)
}

func TestSetUserRating_UnknownReferences(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRatingRepo()
	repo.validUsers[1] = true

	svc := NewRatingService(repo)

	_, err := svc.SetUserRating(ctx, SetUserRatingInput{UserID: 99, SportID: 1, Rating: 4})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.SetUserRating(ctx, SetUserRatingInput{UserID: 1, SportID: 99, Rating: 4})
	assert.ErrorIs(t, err, ErrSportNotFound)
}
