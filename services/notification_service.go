package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/athletelink/athletelink/models"
	"github.com/athletelink/athletelink/repositories"
	"golang.org/x/sync/errgroup"
)

// EventMailer отправляет участнику письмо о смене статуса события.
type EventMailer interface {
	SendEventStatusEmail(email string, event *models.Event) error
}

const notificationConcurrency = 5

// NotificationService рассылает почтовые уведомления участникам события.
type NotificationService struct {
	participantRepo repositories.ParticipantRepository
	mailer          EventMailer
	logger          *slog.Logger
}

func NewNotificationService(
	participantRepo repositories.ParticipantRepository,
	mailer EventMailer,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		participantRepo: participantRepo,
		mailer:          mailer,
		logger:          logger,
	}
}

// NotifyEventStatusChanged отправляет письма всем неотменённым участникам
// события. Письма уходят параллельно, отказ одного адресата не прерывает
// рассылку остальным.
func (s *NotificationService) NotifyEventStatusChanged(ctx context.Context, event *models.Event) error {
	participants, err := s.participantRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to list participants of event %d: %w", event.ID, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(notificationConcurrency)

	for _, participant := range participants {
		if participant.Status == models.ParticipantStatusCancelled || participant.User == nil {
			continue
		}
		email := participant.User.Email
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := s.mailer.SendEventStatusEmail(email, event); err != nil {
				s.logger.Error("failed to send status notification",
					slog.Int("event_id", event.ID),
					slog.String("email", email),
					slog.Any("error", err))
			}
			return nil
		})
	}

	return g.Wait()
}
