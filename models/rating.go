package models

// UserRating хранит агрегированный рейтинг пользователя по виду спорта.
// Пара (user_id, sport_id) уникальна. Значение rating лежит в [0, 5].
// Агрегат не пересчитывается из оценок участников — это внешняя
// ответственность, здесь он только хранится.
type UserRating struct {
	ID           int     `json:"id" db:"id"`
	UserID       int     `json:"user_id" db:"user_id"`
	SportID      int     `json:"sport_id" db:"sport_id"`
	Rating       float64 `json:"rating" db:"rating"`
	RatingsCount int     `json:"ratings_count" db:"ratings_count"`

	Sport *Sport `json:"sport,omitempty" db:"-"`
}
