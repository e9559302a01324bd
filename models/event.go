package models

import "time"

// EventStatus представляет статусы события, соответствующие ENUM в БД.
type EventStatus string

const (
	EventStatusPlanned   EventStatus = "planned"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event представляет спортивное событие, созданное организатором.
type Event struct {
	ID              int         `json:"id" db:"id"`
	SportID         int         `json:"sport_id" db:"sport_id"`
	OrganizerID     int         `json:"organizer_id" db:"organizer_id"`
	RequiredPlayers int         `json:"required_players" db:"required_players"`
	CurrentPlayers  int         `json:"current_players" db:"current_players"`
	Location        *string     `json:"location,omitempty" db:"location"`
	Address         string      `json:"address" db:"address"`
	EventDate       time.Time   `json:"event_date" db:"event_date"`
	Description     *string     `json:"description,omitempty" db:"description"`
	Status          EventStatus `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Sport        *Sport        `json:"sport,omitempty" db:"-"`
	Organizer    *User         `json:"organizer,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
}
