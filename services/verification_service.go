package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/athletelink/athletelink/sessions"
)

// VerificationMailer отправляет код подтверждения на почту.
type VerificationMailer interface {
	SendVerificationCodeEmail(email, code string) error
}

// VerificationService выдаёт одноразовые коды подтверждения email.
// Код привязан к сессии: повторная выдача перезаписывает предыдущий код
// (last-write-wins). Срок жизни кода не ограничивается.
type VerificationService interface {
	IssueCode(ctx context.Context, sessionID, email string) error
}

type verificationService struct {
	sessionStore sessions.Store
	mailer       VerificationMailer
}

func NewVerificationService(sessionStore sessions.Store, mailer VerificationMailer) VerificationService {
	return &verificationService{
		sessionStore: sessionStore,
		mailer:       mailer,
	}
}

func (s *verificationService) IssueCode(ctx context.Context, sessionID, email string) error {
	code, err := generateVerificationCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := s.sessionStore.SetVerificationCode(ctx, sessionID, code); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	if err := s.mailer.SendVerificationCodeEmail(email, code); err != nil {
		return fmt.Errorf("%w: %w", ErrMailDeliveryFailed, err)
	}
	return nil
}

// generateVerificationCode возвращает равномерно случайный шестизначный код
// из диапазона [100000, 999999].
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
