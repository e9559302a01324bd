package sessions

import (
	"context"
	"crypto/rand"
	"errors"
)

// ErrNotAuthenticated возвращается, когда в сессии нет отметки о входе.
var ErrNotAuthenticated = errors.New("session is not authenticated")

// Store — серверное хранилище данных сессии.
// На сессию приходится не более одного ожидающего кода подтверждения,
// каждая запись перезаписывает предыдущую (last-write-wins).
// Срок жизни кода отдельно не ограничивается — код живёт столько же,
// сколько сама сессия.
type Store interface {
	SetVerificationCode(ctx context.Context, sessionID, code string) error
	VerificationCode(ctx context.Context, sessionID string) (string, error)

	SetUserID(ctx context.Context, sessionID string, userID int) error
	UserID(ctx context.Context, sessionID string) (int, error)

	Destroy(ctx context.Context, sessionID string) error
}

const idLength = 32

// NewID генерирует случайный идентификатор сессии.
func NewID() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	randomBytes := make([]byte, idLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	b := make([]byte, idLength)
	for i, rb := range randomBytes {
		b[i] = charset[int(rb)%len(charset)]
	}
	return string(b), nil
}
