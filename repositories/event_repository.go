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
	ErrEventNotFound         = errors.New("event not found")
	ErrEventSportInvalid     = errors.New("event references unknown sport")
	ErrEventOrganizerInvalid = errors.New("event references unknown organizer")
)

// EventFilter ограничивает выборку списка событий.
type EventFilter struct {
	SportID *int
	Status  *models.EventStatus
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	List(ctx context.Context, filter EventFilter) ([]models.Event, error)
	UpdateStatus(ctx context.Context, id int, status models.EventStatus) error
	AdjustCurrentPlayers(ctx context.Context, id int, delta int) error
	Delete(ctx context.Context, id int) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (sport_id, organizer_id, required_players, current_players,
			location, address, event_date, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.SportID,
		event.OrganizerID,
		event.RequiredPlayers,
		event.CurrentPlayers,
		event.Location,
		event.Address,
		event.EventDate,
		event.Description,
		event.Status,
	).Scan(&event.ID, &event.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "events_sport_id_fkey":
				return ErrEventSportInvalid
			case "events_organizer_id_fkey":
				return ErrEventOrganizerInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT
			e.id, e.sport_id, e.organizer_id, e.required_players, e.current_players,
			e.location, e.address, e.event_date, e.description, e.status, e.created_at,
			s.id, s.name, s.logo_key,
			u.id, u.email, u.nickname, u.first_name, u.city
		FROM events e
		JOIN sports s ON e.sport_id = s.id
		JOIN users u ON e.organizer_id = u.id
		WHERE e.id = $1`

	var event models.Event
	var sport models.Sport
	var organizer models.User

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.SportID,
		&event.OrganizerID,
		&event.RequiredPlayers,
		&event.CurrentPlayers,
		&event.Location,
		&event.Address,
		&event.EventDate,
		&event.Description,
		&event.Status,
		&event.CreatedAt,
		&sport.ID,
		&sport.Name,
		&sport.LogoKey,
		&organizer.ID,
		&organizer.Email,
		&organizer.Nickname,
		&organizer.FirstName,
		&organizer.City,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	event.Sport = &sport
	event.Organizer = &organizer
	return &event, nil
}

func (r *postgresEventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	query := `
		SELECT id, sport_id, organizer_id, required_players, current_players,
			location, address, event_date, description, status, created_at
		FROM events
		WHERE ($1::int IS NULL OR sport_id = $1)
		  AND ($2::event_status IS NULL OR status = $2)
		ORDER BY event_date ASC`

	rows, err := r.db.QueryContext(ctx, query, filter.SportID, filter.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var event models.Event
		scanErr := rows.Scan(
			&event.ID,
			&event.SportID,
			&event.OrganizerID,
			&event.RequiredPlayers,
			&event.CurrentPlayers,
			&event.Location,
			&event.Address,
			&event.EventDate,
			&event.Description,
			&event.Status,
			&event.CreatedAt,
		)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresEventRepository) UpdateStatus(ctx context.Context, id int, status models.EventStatus) error {
	query := `UPDATE events SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

// AdjustCurrentPlayers атомарно изменяет счётчик занятых мест.
func (r *postgresEventRepository) AdjustCurrentPlayers(ctx context.Context, id int, delta int) error {
	query := `UPDATE events SET current_players = current_players + $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, delta, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *postgresEventRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM events WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}
	return nil
}
