package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/athletelink/athletelink/models"
	"github.com/athletelink/athletelink/repositories"
)

type ParticipantService interface {
	JoinEvent(ctx context.Context, eventID, userID int) (*models.Participant, error)
	LeaveEvent(ctx context.Context, eventID, userID int) error
	ChangeStatus(ctx context.Context, eventID, participantID, actorID int, status models.ParticipantStatus) (*models.Participant, error)
	RateParticipant(ctx context.Context, eventID, participantID, actorID int, rating float64) (*models.Participant, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Participant, error)
}

type participantService struct {
	participantRepo repositories.ParticipantRepository
	eventRepo       repositories.EventRepository
	userRepo        repositories.UserRepository
	hub             RosterBroadcaster
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	eventRepo repositories.EventRepository,
	userRepo repositories.UserRepository,
	hub RosterBroadcaster,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		eventRepo:       eventRepo,
		userRepo:        userRepo,
		hub:             hub,
	}
}

// JoinEvent регистрирует пользователя на событие. Регистрация открыта,
// пока событие запланировано и есть свободные места.
func (s *participantService) JoinEvent(ctx context.Context, eventID, userID int) (*models.Participant, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", eventID, err)
	}

	if event.Status != models.EventStatusPlanned {
		return nil, ErrEventRegistrationClosed
	}
	if event.CurrentPlayers >= event.RequiredPlayers {
		return nil, ErrEventFull
	}

	participant := &models.Participant{
		EventID: eventID,
		UserID:  userID,
		Status:  models.ParticipantStatusRegistered,
	}

	if err := s.participantRepo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantConflict) {
			return nil, ErrParticipantConflict
		}
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	if err := s.eventRepo.AdjustCurrentPlayers(ctx, eventID, 1); err != nil {
		return nil, fmt.Errorf("failed to adjust event players count: %w", err)
	}

	s.broadcastRoster(ctx, eventID)
	return participant, nil
}

// LeaveEvent снимает регистрацию: участие помечается отменённым,
// место освобождается.
func (s *participantService) LeaveEvent(ctx context.Context, eventID, userID int) error {
	participant, err := s.participantRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to find participation: %w", err)
	}

	if participant.Status == models.ParticipantStatusCancelled {
		return nil
	}

	if err := s.participantRepo.UpdateStatus(ctx, participant.ID, models.ParticipantStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel participation: %w", err)
	}
	if err := s.eventRepo.AdjustCurrentPlayers(ctx, eventID, -1); err != nil {
		return fmt.Errorf("failed to adjust event players count: %w", err)
	}

	s.broadcastRoster(ctx, eventID)
	return nil
}

// ChangeStatus меняет статус участия. Разрешено организатору события
// и персоналу. Переход в cancelled и обратно корректирует счётчик мест.
func (s *participantService) ChangeStatus(ctx context.Context, eventID, participantID, actorID int, status models.ParticipantStatus) (*models.Participant, error) {
	if !isValidParticipantStatus(status) {
		return nil, ErrEventInvalidStatus
	}

	event, participant, err := s.getEventParticipant(ctx, eventID, participantID)
	if err != nil {
		return nil, err
	}
	if err := s.checkRosterManager(ctx, event, actorID); err != nil {
		return nil, err
	}

	if participant.Status == status {
		return participant, nil
	}

	if err := s.participantRepo.UpdateStatus(ctx, participantID, status); err != nil {
		return nil, fmt.Errorf("failed to update participant status: %w", err)
	}

	delta := 0
	if status == models.ParticipantStatusCancelled {
		delta = -1
	} else if participant.Status == models.ParticipantStatusCancelled {
		delta = 1
	}
	if delta != 0 {
		if err := s.eventRepo.AdjustCurrentPlayers(ctx, eventID, delta); err != nil {
			return nil, fmt.Errorf("failed to adjust event players count: %w", err)
		}
	}

	participant.Status = status
	s.broadcastRoster(ctx, eventID)
	return participant, nil
}

// RateParticipant сохраняет оценку участника после события. Агрегированный
// рейтинг пользователя по виду спорта при этом не пересчитывается.
func (s *participantService) RateParticipant(ctx context.Context, eventID, participantID, actorID int, rating float64) (*models.Participant, error) {
	if rating < 0 || rating > 5 {
		return nil, ErrRatingOutOfRange
	}

	event, participant, err := s.getEventParticipant(ctx, eventID, participantID)
	if err != nil {
		return nil, err
	}
	if err := s.checkRosterManager(ctx, event, actorID); err != nil {
		return nil, err
	}

	if err := s.participantRepo.UpdateRating(ctx, participantID, rating); err != nil {
		return nil, fmt.Errorf("failed to rate participant: %w", err)
	}

	participant.Rating = &rating
	return participant, nil
}

func (s *participantService) ListByEvent(ctx context.Context, eventID int) ([]models.Participant, error) {
	participants, err := s.participantRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of event %d: %w", eventID, err)
	}
	return participants, nil
}

func (s *participantService) getEventParticipant(ctx context.Context, eventID, participantID int) (*models.Event, *models.Participant, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, fmt.Errorf("failed to get event %d: %w", eventID, err)
	}

	participant, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, nil, ErrParticipantNotFound
		}
		return nil, nil, fmt.Errorf("failed to get participant %d: %w", participantID, err)
	}
	if participant.EventID != eventID {
		return nil, nil, ErrParticipantNotFound
	}
	return event, participant, nil
}

func (s *participantService) checkRosterManager(ctx context.Context, event *models.Event, actorID int) error {
	if event.OrganizerID == actorID {
		return nil
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrForbiddenOperation
		}
		return fmt.Errorf("failed to get user %d: %w", actorID, err)
	}
	if actor.IsStaff || actor.IsSuperuser {
		return nil
	}
	return ErrForbiddenOperation
}

func (s *participantService) broadcastRoster(ctx context.Context, eventID int) {
	if s.hub == nil {
		return
	}
	participants, err := s.participantRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return
	}
	s.hub.BroadcastToRoom(EventRoomID(eventID), "ROSTER_UPDATED", participants)
}

func isValidParticipantStatus(status models.ParticipantStatus) bool {
	switch status {
	case models.ParticipantStatusRegistered, models.ParticipantStatusConfirmed,
		models.ParticipantStatusCancelled, models.ParticipantStatusAttended:
		return true
	}
	return false
}
