package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/athletelink/athletelink/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("user is already registered for this event")
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	GetByEventAndUser(ctx context.Context, eventID, userID int) (*models.Participant, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Participant, error)
	UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error
	UpdateRating(ctx context.Context, id int, rating float64) error
	Delete(ctx context.Context, id int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) Create(ctx context.Context, participant *models.Participant) error {
	query := `
		INSERT INTO event_participants (event_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		participant.EventID,
		participant.UserID,
		participant.Status,
	).Scan(&participant.ID, &participant.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			if pqErr.Constraint == "event_participants_event_user_key" {
				return ErrParticipantConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `
		SELECT id, event_id, user_id, status, rating, created_at
		FROM event_participants
		WHERE id = $1`
	return r.scanParticipant(ctx, query, id)
}

func (r *postgresParticipantRepository) GetByEventAndUser(ctx context.Context, eventID, userID int) (*models.Participant, error) {
	query := `
		SELECT id, event_id, user_id, status, rating, created_at
		FROM event_participants
		WHERE event_id = $1 AND user_id = $2`
	return r.scanParticipant(ctx, query, eventID, userID)
}

// ListByEvent возвращает участников события вместе с данными пользователей.
func (r *postgresParticipantRepository) ListByEvent(ctx context.Context, eventID int) ([]models.Participant, error) {
	query := `
		SELECT ep.id, ep.event_id, ep.user_id, ep.status, ep.rating, ep.created_at,
			u.id, u.email, u.nickname, u.first_name, u.city
		FROM event_participants ep
		JOIN users u ON ep.user_id = u.id
		WHERE ep.event_id = $1
		ORDER BY ep.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var participant models.Participant
		var user models.User
		scanErr := rows.Scan(
			&participant.ID,
			&participant.EventID,
			&participant.UserID,
			&participant.Status,
			&participant.Rating,
			&participant.CreatedAt,
			&user.ID,
			&user.Email,
			&user.Nickname,
			&user.FirstName,
			&user.City,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		participant.User = &user
		participants = append(participants, participant)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *postgresParticipantRepository) UpdateStatus(ctx context.Context, id int, status models.ParticipantStatus) error {
	query := `UPDATE event_participants SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (r *postgresParticipantRepository) UpdateRating(ctx context.Context, id int, rating float64) error {
	query := `UPDATE event_participants SET rating = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, rating, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM event_participants WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (r *postgresParticipantRepository) scanParticipant(ctx context.Context, query string, args ...interface{}) (*models.Participant, error) {
	participant := &models.Participant{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&participant.ID,
		&participant.EventID,
		&participant.UserID,
		&participant.Status,
		&participant.Rating,
		&participant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}
	return participant, nil
}
