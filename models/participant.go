package models

import "time"

// ParticipantStatus представляет статусы участия, соответствующие ENUM в БД.
type ParticipantStatus string

const (
	ParticipantStatusRegistered ParticipantStatus = "registered"
	ParticipantStatusConfirmed  ParticipantStatus = "confirmed"
	ParticipantStatusCancelled  ParticipantStatus = "cancelled"
	ParticipantStatusAttended   ParticipantStatus = "attended"
)

// Participant связывает пользователя с событием.
// Пара (event_id, user_id) уникальна. Rating — необязательная оценка
// участника после события, в [0, 5].
type Participant struct {
	ID        int               `json:"id" db:"id"`
	EventID   int               `json:"event_id" db:"event_id"`
	UserID    int               `json:"user_id" db:"user_id"`
	Status    ParticipantStatus `json:"status" db:"status"`
	Rating    *float64          `json:"rating,omitempty" db:"rating"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
