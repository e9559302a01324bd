package models

import "time"

// UserGender соответствует ENUM user_gender в БД.
type UserGender string

const (
	GenderMale   UserGender = "male"
	GenderFemale UserGender = "female"
	GenderOther  UserGender = "other"
)

// User представляет аккаунт пользователя.
// Email и Nickname уникальны, оба принимаются как логин при входе.
type User struct {
	ID           int         `json:"id" db:"id"`
	Email        string      `json:"email" db:"email"`
	Nickname     string      `json:"nickname" db:"nickname"`
	PasswordHash string      `json:"-" db:"password_hash"`
	FirstName    string      `json:"first_name" db:"first_name"`
	LastName     *string     `json:"last_name,omitempty" db:"last_name"`
	Telegram     string      `json:"telegram" db:"telegram"`
	Gender       *UserGender `json:"gender,omitempty" db:"gender"`
	BirthDate    time.Time   `json:"birth_date" db:"birth_date"`
	City         string      `json:"city" db:"city"`
	Bio          *string     `json:"bio,omitempty" db:"bio"`
	IsActive     bool        `json:"is_active" db:"is_active"`
	IsStaff      bool        `json:"is_staff" db:"is_staff"`
	IsSuperuser  bool        `json:"is_superuser" db:"is_superuser"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}
