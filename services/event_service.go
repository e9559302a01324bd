package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/athletelink/athletelink/models"
	"github.com/athletelink/athletelink/repositories"
)

// EventNotifier уведомляет участников о смене статуса события.
type EventNotifier interface {
	NotifyEventStatusChanged(ctx context.Context, event *models.Event) error
}

// RosterBroadcaster раздаёт обновления события подписчикам комнаты.
type RosterBroadcaster interface {
	BroadcastToRoom(roomID string, messageType string, payload interface{})
}

type EventService interface {
	CreateEvent(ctx context.Context, organizerID int, input CreateEventInput) (*models.Event, error)
	GetEventByID(ctx context.Context, id int) (*models.Event, error)
	ListEvents(ctx context.Context, filter repositories.EventFilter) ([]models.Event, error)
	UpdateEventStatus(ctx context.Context, eventID, actorID int, status models.EventStatus) (*models.Event, error)
	DeleteEvent(ctx context.Context, eventID, actorID int) error
}

type CreateEventInput struct {
	SportID         int     `json:"sport_id"`
	RequiredPlayers int     `json:"required_players"`
	Location        *string `json:"location,omitempty"`
	Address         string  `json:"address"`
	EventDate       string  `json:"event_date"`
	Description     *string `json:"description,omitempty"`
}

type eventService struct {
	eventRepo       repositories.EventRepository
	sportRepo       repositories.SportRepository
	userRepo        repositories.UserRepository
	participantRepo repositories.ParticipantRepository
	notifier        EventNotifier
	hub             RosterBroadcaster
	logger          *slog.Logger
}

func NewEventService(
	eventRepo repositories.EventRepository,
	sportRepo repositories.SportRepository,
	userRepo repositories.UserRepository,
	participantRepo repositories.ParticipantRepository,
	notifier EventNotifier,
	hub RosterBroadcaster,
	logger *slog.Logger,
) EventService {
	return &eventService{
		eventRepo:       eventRepo,
		sportRepo:       sportRepo,
		userRepo:        userRepo,
		participantRepo: participantRepo,
		notifier:        notifier,
		hub:             hub,
		logger:          logger,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID int, input CreateEventInput) (*models.Event, error) {
	if input.RequiredPlayers <= 0 {
		return nil, ErrEventInvalidPlayersCount
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, ErrEventAddressRequired
	}
	if input.EventDate == "" {
		return nil, ErrEventDateRequired
	}
	eventDate, err := time.Parse(time.RFC3339, input.EventDate)
	if err != nil {
		return nil, fmt.Errorf("%w: event_date must be RFC3339", ErrEventDateRequired)
	}

	if _, err := s.sportRepo.GetByID(ctx, input.SportID); err != nil {
		if errors.Is(err, repositories.ErrSportNotFound) {
			return nil, ErrSportNotFound
		}
		return nil, fmt.Errorf("failed to check sport %d: %w", input.SportID, err)
	}

	event := &models.Event{
		SportID:         input.SportID,
		OrganizerID:     organizerID,
		RequiredPlayers: input.RequiredPlayers,
		CurrentPlayers:  0,
		Location:        input.Location,
		Address:         address,
		EventDate:       eventDate,
		Description:     input.Description,
		Status:          models.EventStatusPlanned,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		switch {
		case errors.Is(err, repositories.ErrEventSportInvalid):
			return nil, ErrSportNotFound
		case errors.Is(err, repositories.ErrEventOrganizerInvalid):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(ctx context.Context, id int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event by id %d: %w", id, err)
	}

	participants, err := s.participantRepo.ListByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of event %d: %w", id, err)
	}
	event.Participants = participants

	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, filter repositories.EventFilter) ([]models.Event, error) {
	if filter.Status != nil && !isValidEventStatus(*filter.Status) {
		return nil, ErrEventInvalidStatus
	}
	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// UpdateEventStatus меняет статус события. Разрешено организатору события
// и персоналу. Участники уведомляются по почте, подписчики комнаты —
// по WebSocket.
func (s *eventService) UpdateEventStatus(ctx context.Context, eventID, actorID int, status models.EventStatus) (*models.Event, error) {
	if !isValidEventStatus(status) {
		return nil, ErrEventInvalidStatus
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %d: %w", eventID, err)
	}

	if err := s.checkEventManager(ctx, event, actorID); err != nil {
		return nil, err
	}

	if !isAllowedTransition(event.Status, status) {
		return nil, ErrEventInvalidStatusTransition
	}

	if err := s.eventRepo.UpdateStatus(ctx, eventID, status); err != nil {
		return nil, fmt.Errorf("failed to update event %d status: %w", eventID, err)
	}
	event.Status = status

	if s.notifier != nil {
		if err := s.notifier.NotifyEventStatusChanged(ctx, event); err != nil {
			s.logger.Error("failed to notify participants about status change",
				slog.Int("event_id", eventID), slog.Any("error", err))
		}
	}
	if s.hub != nil {
		s.hub.BroadcastToRoom(EventRoomID(eventID), "EVENT_STATUS_UPDATED", event)
	}

	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, actorID int) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to get event %d: %w", eventID, err)
	}

	if err := s.checkEventManager(ctx, event, actorID); err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("failed to delete event %d: %w", eventID, err)
	}
	return nil
}

// checkEventManager пропускает организатора события и персонал.
func (s *eventService) checkEventManager(ctx context.Context, event *models.Event, actorID int) error {
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

// EventRoomID возвращает идентификатор комнаты события для WebSocket-раздачи.
func EventRoomID(eventID int) string {
	return fmt.Sprintf("event_%d", eventID)
}

func isValidEventStatus(status models.EventStatus) bool {
	switch status {
	case models.EventStatusPlanned, models.EventStatusActive,
		models.EventStatusCompleted, models.EventStatusCancelled:
		return true
	}
	return false
}

func isAllowedTransition(from, to models.EventStatus) bool {
	switch from {
	case models.EventStatusPlanned:
		return to == models.EventStatusActive || to == models.EventStatusCancelled
	case models.EventStatusActive:
		return to == models.EventStatusCompleted || to == models.EventStatusCancelled
	}
	return false
}
