package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/athletelink/athletelink/models"
	"github.com/lib/pq"
)

var (
	ErrRatingNotFound     = errors.New("user rating not found")
	ErrRatingUserInvalid  = errors.New("rating references unknown user")
	ErrRatingSportInvalid = errors.New("rating references unknown sport")
)

type RatingRepository interface {
	Upsert(ctx context.Context, rating *models.UserRating) error
	GetByUserAndSport(ctx context.Context, userID, sportID int) (*models.UserRating, error)
	ListByUser(ctx context.Context, userID int) ([]models.UserRating, error)
}

type postgresRatingRepository struct {
	db *sql.DB
}

func NewPostgresRatingRepository(db *sql.DB) RatingRepository {
	return &postgresRatingRepository{db: db}
}

// Upsert вставляет или перезаписывает агрегат рейтинга пары (user, sport).
// Сам агрегат здесь не вычисляется, хранится как есть.
func (r *postgresRatingRepository) Upsert(ctx context.Context, rating *models.UserRating) error {
	query := `
		INSERT INTO user_ratings (user_id, sport_id, rating, ratings_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT user_ratings_user_sport_key
		DO UPDATE SET rating = EXCLUDED.rating, ratings_count = EXCLUDED.ratings_count
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		rating.UserID,
		rating.SportID,
		rating.Rating,
		rating.RatingsCount,
	).Scan(&rating.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "user_ratings_user_id_fkey":
				return ErrRatingUserInvalid
			case "user_ratings_sport_id_fkey":
				return ErrRatingSportInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresRatingRepository) GetByUserAndSport(ctx context.Context, userID, sportID int) (*models.UserRating, error) {
	query := `
		SELECT id, user_id, sport_id, rating, ratings_count
		FROM user_ratings
		WHERE user_id = $1 AND sport_id = $2`

	var rating models.UserRating
	err := r.db.QueryRowContext(ctx, query, userID, sportID).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.SportID,
		&rating.Rating,
		&rating.RatingsCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rating, nil
}

// ListByUser возвращает рейтинги пользователя по всем видам спорта
// вместе с данными вида спорта.
func (r *postgresRatingRepository) ListByUser(ctx context.Context, userID int) ([]models.UserRating, error) {
	query := `
		SELECT ur.id, ur.user_id, ur.sport_id, ur.rating, ur.ratings_count,
			s.id, s.name, s.logo_key
		FROM user_ratings ur
		JOIN sports s ON ur.sport_id = s.id
		WHERE ur.user_id = $1
		ORDER BY s.name ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := make([]models.UserRating, 0)
	for rows.Next() {
		var rating models.UserRating
		var sport models.Sport
		scanErr := rows.Scan(
			&rating.ID,
			&rating.UserID,
			&rating.SportID,
			&rating.Rating,
			&rating.RatingsCount,
			&sport.ID,
			&sport.Name,
			&sport.LogoKey,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		rating.Sport = &sport
		ratings = append(ratings, rating)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}
