package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/athletelink/athletelink/models"
	"github.com/athletelink/athletelink/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSportRepo struct {
	sports map[int]*models.Sport
	nextID int
}

func newFakeSportRepo() *fakeSportRepo {
	return &fakeSportRepo{sports: make(map[int]*models.Sport), nextID: 1}
}

func (r *fakeSportRepo) Create(_ context.Context, sport *models.Sport) error {
	for _, existing := range r.sports {
		if existing.Name == sport.Name {
			return repositories.ErrSportNameConflict
		}
	}
	sport.ID = r.nextID
	r.nextID++
	clone := *sport
	r.sports[sport.ID] = &clone
	return nil
}

func (r *fakeSportRepo) GetByID(_ context.Context, id int) (*models.Sport, error) {
	sport, ok := r.sports[id]
	if !ok {
		return nil, repositories.ErrSportNotFound
	}
	clone := *sport
	return &clone, nil
}

func (r *fakeSportRepo) GetAll(_ context.Context) ([]models.Sport, error) {
	var sports []models.Sport
	for _, sport := range r.sports {
		sports = append(sports, *sport)
	}
	return sports, nil
}

func (r *fakeSportRepo) Update(_ context.Context, sport *models.Sport) error {
	if _, ok := r.sports[sport.ID]; !ok {
		return repositories.ErrSportNotFound
	}
	clone := *sport
	r.sports[sport.ID] = &clone
	return nil
}

func (r *fakeSportRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	sport, ok := r.sports[id]
	if !ok {
		return repositories.ErrSportNotFound
	}
	sport.LogoKey = logoKey
	return nil
}

func (r *fakeSportRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.sports[id]; !ok {
		return repositories.ErrSportNotFound
	}
	delete(r.sports, id)
	return nil
}

type recordingNotifier struct {
	notified []int
}

func (n *recordingNotifier) NotifyEventStatusChanged(_ context.Context, event *models.Event) error {
	n.notified = append(n.notified, event.ID)
	return nil
}

func newTestEventService(
	eventRepo *fakeEventRepo,
	sportRepo *fakeSportRepo,
	userRepo *fakeUserRepo,
	participantRepo *fakeParticipantRepo,
	notifier EventNotifier,
) EventService {
	return NewEventService(eventRepo, sportRepo, userRepo, participantRepo, notifier, nil, slog.Default())
}

func TestCreateEvent_Validation(t *testing.T) {
	ctx := context.Background()
	eventRepo := newFakeEventRepo()
	sportRepo := newFakeSportRepo()
	userRepo := newFakeUserRepo()
	participantRepo := newFakeParticipantRepo()
	require.NoError(t, sportRepo.Create(ctx, &models.Sport{Name: "Футбол"}))

	svc := newTestEventService(eventRepo, sportRepo, userRepo, participantRepo, nil)

	valid := CreateEventInput{
		SportID:         1,
		RequiredPlayers: 10,
		Address:         "Абая 10",
		EventDate:       time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}

	input := valid
	input.RequiredPlayers = 0
	_, err := svc.CreateEvent(ctx, 1, input)
	assert.ErrorIs(t, err, ErrEventInvalidPlayersCount)

	input = valid
	input.Address = "   "
	_, err = svc.CreateEvent(ctx, 1, input)
	assert.ErrorIs(t, err, ErrEventAddressRequired)

	input = valid
	input.EventDate = "завтра"
	_, err = svc.CreateEvent(ctx, 1, input)
	assert.ErrorIs(t, err, ErrEventDateRequired)

	input = valid
	input.SportID = 99
	_, err = svc.CreateEvent(ctx, 1, input)
	assert.ErrorIs(t, err, ErrSportNotFound)

	event, err := svc.CreateEvent(ctx, 1, valid)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusPlanned, event.Status)
	assert.Equal(t, 0, event.CurrentPlayers)
	assert.Equal(t, 1, event.OrganizerID)
}

func TestUpdateEventStatus_Transitions(t *testing.T) {
	ctx := context.Background()
	eventRepo := newFakeEventRepo()
	sportRepo := newFakeSportRepo()
	userRepo := newFakeUserRepo()
	participantRepo := newFakeParticipantRepo()
	organizer := userRepo.mustAdd(t, "org@example.com", "org", "secret123", true)

	svc := newTestEventService(eventRepo, sportRepo, userRepo, participantRepo, nil)

	// planned -> completed запрещён
	event := eventRepo.mustAdd(t, organizer.ID, 10, 0, models.EventStatusPlanned)
	_, err := svc.UpdateEventStatus(ctx, event.ID, organizer.ID, models.EventStatusCompleted)
	assert.ErrorIs(t, err, ErrEventInvalidStatusTransition)

	// planned -> active -> completed разрешён
	updated, err := svc.UpdateEventStatus(ctx, event.ID, organizer.ID, models.EventStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusActive, updated.Status)

	updated, err = svc.UpdateEventStatus(ctx, event.ID, organizer.ID, models.EventStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusCompleted, updated.Status)

	// Из терминального статуса выхода нет
	_, err = svc.UpdateEventStatus(ctx, event.ID, organizer.ID, models.EventStatusActive)
	assert.ErrorIs(t, err, ErrEventInvalidStatusTransition)
}

func TestUpdateEventStatus_AccessControl(t *testing.T) {
	ctx := context.Background()
	eventRepo := newFakeEventRepo()
	sportRepo := newFakeSportRepo()
	userRepo := newFakeUserRepo()
	participantRepo := newFakeParticipantRepo()
	organizer := userRepo.mustAdd(t, "org@example.com", "org", "secret123", true)
	outsider := userRepo.mustAdd(t, "out@example.com", "out", "secret123", true)
	staff := userRepo.mustAdd(t, "staff@example.com", "staff", "secret123", true)
	userRepo.users[staff.ID].IsStaff = true

	event := eventRepo.mustAdd(t, organizer.ID, 10, 0, models.EventStatusPlanned)
	svc := newTestEventService(eventRepo, sportRepo, userRepo, participantRepo, nil)

	_, err := svc.UpdateEventStatus(ctx, event.ID, outsider.ID, models.EventStatusCancelled)
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	// Персонал управляет любым событием
	_, err = svc.UpdateEventStatus(ctx, event.ID, staff.ID, models.EventStatusCancelled)
	assert.NoError(t, err)
}

func TestUpdateEventStatus_NotifiesParticipants(t *testing.T) {
	ctx := context.Background()
	eventRepo := newFakeEventRepo()
	sportRepo := newFakeSportRepo()
	userRepo := newFakeUserRepo()
	participantRepo := newFakeParticipantRepo()
	organizer := userRepo.mustAdd(t, "org@example.com", "org", "secret123", true)
	notifier := &recordingNotifier{}

	event := eventRepo.mustAdd(t, organizer.ID, 10, 0, models.EventStatusPlanned)
	svc := newTestEventService(eventRepo, sportRepo, userRepo, participantRepo, notifier)

	_, err := svc.UpdateEventStatus(ctx, event.ID, organizer.ID, models.EventStatusActive)
	require.NoError(t, err)
	assert.Equal(t, []int{event.ID}, notifier.notified)
}
