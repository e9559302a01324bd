package services

import (
	"context"
	"testing"
	"time"

	"github.com/athletelink/athletelink/models"
	"github.com/athletelink/athletelink/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventRepo struct {
	events map[int]*models.Event
	nextID int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{events: make(map[int]*models.Event), nextID: 1}
}

func (r *fakeEventRepo) Create(_ context.Context, event *models.Event) error {
	event.ID = r.nextID
	r.nextID++
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int) (*models.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, repositories.ErrEventNotFound
	}
	clone := *event
	return &clone, nil
}

func (r *fakeEventRepo) List(_ context.Context, filter repositories.EventFilter) ([]models.Event, error) {
	var events []models.Event
	for _, event := range r.events {
		if filter.SportID != nil && event.SportID != *filter.SportID {
			continue
		}
		if filter.Status != nil && event.Status != *filter.Status {
			continue
		}
		events = append(events, *event)
	}
	return events, nil
}

func (r *fakeEventRepo) UpdateStatus(_ context.Context, id int, status models.EventStatus) error {
	event, ok := r.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	event.Status = status
	return nil
}

func (r *fakeEventRepo) AdjustCurrentPlayers(_ context.Context, id int, delta int) error {
	event, ok := r.events[id]
	if !ok {
		return repositories.ErrEventNotFound
	}
	event.CurrentPlayers += delta
	return nil
}

func (r *fakeEventRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.events[id]; !ok {
		return repositories.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

type fakeParticipantRepo struct {
	participants map[int]*models.Participant
	nextID       int
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[int]*models.Participant), nextID: 1}
}

func (r *fakeParticipantRepo) Create(_ context.Context, participant *models.Participant) error {
	for _, existing := range r.participants {
		if existing.EventID == participant.EventID && existing.UserID == participant.UserID {
			return repositories.ErrParticipantConflict
		}
	}
	participant.ID = r.nextID
	r.nextID++
	clone := *participant
	r.participants[participant.ID] = &clone
	return nil
}

func (r *fakeParticipantRepo) GetByID(_ context.Context, id int) (*models.Participant, error) {
	participant, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	clone := *participant
	return &clone, nil
}

func (r *fakeParticipantRepo) GetByEventAndUser(_ context.Context, eventID, userID int) (*models.Participant, error) {
	for _, participant := range r.participants {
		if participant.EventID == eventID && participant.UserID == userID {
			clone := *participant
			return &clone, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByEvent(_ context.Context, eventID int) ([]models.Participant, error) {
	var participants []models.Participant
	for _, participant := range r.participants {
		if participant.EventID == eventID {
			participants = append(participants, *participant)
		}
	}
	return participants, nil
}

func (r *fakeParticipantRepo) UpdateStatus(_ context.Context, id int, status models.ParticipantStatus) error {
	participant, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	participant.Status = status
	return nil
}

func (r *fakeParticipantRepo) UpdateRating(_ context.Context, id int, rating float64) error {
	participant, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	participant.Rating = &rating
	return nil
}

func (r *fakeParticipantRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.participants[id]; !ok {
		return repositories.ErrParticipantNotFound
	}
	delete(r.participants, id)
	return nil
}

func (r *fakeEventRepo) mustAdd(t *testing.T, organizerID, required, current int, status models.EventStatus) *models.Event {
	t.Helper()
	event := &models.Event{
		SportID:         1,
		OrganizerID:     organizerID,
		RequiredPlayers: required,
		CurrentPlayers:  current,
		Address:         "Абая 10",
		EventDate:       time.Now().Add(24 * time.Hour),
		Status:          status,
	}
	require.NoError(t, r.Create(context.Background(), event))
	return event
}

func newTestParticipantService(eventRepo *fakeEventRepo, participantRepo *fakeParticipantRepo, userRepo *fakeUserRepo) ParticipantService {
	return NewParticipantService(participantRepo, eventRepo, userRepo, nil)
}

func TestJoinEvent_Success(t *testing.T) {
	ctx := context.Background()
	eventRepo := newFakeEventRepo()
	participantRepo := newFakeParticipantRepo()
	userRepo := newFakeUserRepo()
	event := eventRepo.mustAdd(t, 1, 10, 0, models.EventStatusPlanned)

	svc := newTestParticipantService(eventRepo, participantRepo, userRepo)

	participant, err := svc.JoinEvent(ctx, event.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantStatusRegistered, participant.Status)
	assert.Equal(t, 42, participant.UserID)

	updated, err := eventRepo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.CurrentPlayers)
}

func TestJoinEvent_RegistrationClosed(t *testing.T) {
	ctx := context.Background()
	eventRepo := newFakeEventRepo()
	participantRepo := newFakeParticipantRepo()
	userRepo := newFakeUserRepo()

	for _, status := range []models.EventStatus{
		models.EventStatusActive,
		models.EventStatusCompleted,
		models.EventStatusCancelled,
	} {
		event := eventRepo.mustAdd(t, 1, 10, 0, status)
		svc := newTestParticipantService(eventRepo, participantRepo, userRepo)

		_, err := svc.JoinEvent(ctx, event.ID, 42)
		assert.ErrorIs(t, err, ErrEventRegistrationClosed, "status %s", status)
	}
}

func TestJoinEvent_FullEvent(t *testing.T) {
	ctx := context.Background()
	eventRepo := newFakeEventRepo()
	participantRepo := newFakeParticipantRepo()
	userRepo := newFakeUserRepo()
	event := eventRepo.mustAdd(t, 1, 2, 2, models.EventStatusPlanned)

	svc := newTestParticipantService(eventRepo, participantRepo, userRepo)

	_, err := svc.JoinEvent(ctx, event.ID, 42)
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestJoinEvent_DuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	eventRepo := newFakeEventRepo()
	participantRepo := newFakeParticipantRepo()
	userRepo := newFakeUserRepo()
	event := eventRepo.mustAdd(t, 1, 10, 0, models.EventStatusPlanned)

	svc := newTestParticipantService(eventRepo, participantRepo, userRepo)

	_, err := svc.JoinEvent(ctx, event.ID, 42)
	require.NoError(t, err)

	_, err = svc.JoinEvent(ctx, event.ID, 42)
	assert.ErrorIs(t, err, ErrParticipantConflict)
}

func TestLeaveEvent_FreesSlot(t *testing.T) {
	ctx := context.Background()
	eventRepo := newFakeEventRepo()
	participantRepo := newFakeParticipantRepo()
	userRepo := newFakeUserRepo()
	event := eventRepo.mustAdd(t, 1, 10, 0, models.EventStatusPlanned)

	svc := newTestParticipantService(eventRepo, participantRepo, userRepo)

	_, err := svc.JoinEvent(ctx, event.ID, 42)
	require.NoError(t, err)

	require.NoError(t, svc.LeaveEvent(ctx, event.ID, 42))

	updated, err := eventRepo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.CurrentPlayers)

	// Повторная отмена идемпотентна
	require.NoError(t, svc.LeaveEvent(ctx, event.ID, 42))
	updated, err = eventRepo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.CurrentPlayers)
}

func TestChangeStatus_OnlyManagerAllowed(t *testing.T) {
	ctx := context.Background()
	eventRepo := newFakeEventRepo()
	participantRepo := newFakeParticipantRepo()
	userRepo := newFakeUserRepo()
	organizer := userRepo.mustAdd(t, "org@example.com", "org", "secret123", true)
	outsider := userRepo.mustAdd(t, "out@example.com", "out", "secret123", true)
	event := eventRepo.mustAdd(t, organizer.ID, 10, 0, models.EventStatusPlanned)

	svc := newTestParticipantService(eventRepo, participantRepo, userRepo)

	participant, err := svc.JoinEvent(ctx, event.ID, outsider.ID)
	require.NoError(t, err)

	// Посторонний пользователь не управляет составом
	_, err = svc.ChangeStatus(ctx, event.ID, participant.ID, outsider.ID, models.ParticipantStatusConfirmed)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	// Организатору можно
	updated, err := svc.ChangeStatus(ctx, event.ID, participant.ID, organizer.ID, models.ParticipantStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantStatusConfirmed, updated.Status)
}

func TestRateParticipant_Bounds(t *testing.T) {
	ctx := context.Background()
	eventRepo := newFakeEventRepo()
	participantRepo := newFakeParticipantRepo()
	userRepo := newFakeUserRepo()
	organizer := userRepo.mustAdd(t, "org@example.com", "org", "secret123", true)
	event := eventRepo.mustAdd(t, organizer.ID, 10, 0, models.EventStatusPlanned)

	svc := newTestParticipantService(eventRepo, participantRepo, userRepo)

	participant, err := svc.JoinEvent(ctx, event.ID, 42)
	require.NoError(t, err)

	_, err = svc.RateParticipant(ctx, event.ID, participant.ID, organizer.ID, 5.5)
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	_, err = svc.RateParticipant(ctx, event.ID, participant.ID, organizer.ID, -0.5)
	assert.ErrorIs(t, err, ErrRatingOutOfRange)

	rated, err := svc.RateParticipant(ctx, event.ID, participant.ID, organizer.ID, 4.5)
	require.NoError(t, err)
	require.NotNil(t, rated.Rating)
	assert.Equal(t, 4.5, *rated.Rating)
}
