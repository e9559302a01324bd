package services

import (
	"context"
	"errors"
	"testing"

	"github.com/athletelink/athletelink/models"
	"github.com/athletelink/athletelink/repositories"
	"github.com/athletelink/athletelink/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo — хранилище пользователей в памяти для тестов сервисов.
type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]*models.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if existing.Nickname == user.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByNickname(_ context.Context, nickname string) (*models.User, error) {
	for _, user := range r.users {
		if user.Nickname == nickname {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) UpdateAvatarKey(_ context.Context, id int, avatarKey *string) error {
	user, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	user.AvatarKey = avatarKey
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) mustAdd(t *testing.T, email, nickname, password string, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:        email,
		Nickname:     nickname,
		PasswordHash: string(hash),
		FirstName:    "Test",
		Telegram:     "@" + nickname,
		City:         "Almaty",
		IsActive:     active,
	}
	require.NoError(t, r.Create(context.Background(), user))
	return user
}

func validRegisterInput(code string) RegisterInput {
	return RegisterInput{
		Email:            "new@example.com",
		Password:         "super_password123",
		PasswordConfirm:  "super_password123",
		FirstName:        "Aida",
		Nickname:         "aida",
		Telegram:         "@aida",
		BirthDate:        "2000-04-15",
		City:             "Almaty",
		VerificationCode: code,
	}
}

func TestLogin_ByEmailAndNickname(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	store := sessions.NewMemoryStore()
	repo.mustAdd(t, "player@example.com", "player1", "secret123", true)

	svc := NewAuthService(repo, store)

	// По email
	user, err := svc.Login(ctx, "sess-email", LoginInput{Login: "player@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "player1", user.Nickname)
	assert.Empty(t, user.PasswordHash)

	userID, err := store.UserID(ctx, "sess-email")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	// По никнейму
	user, err = svc.Login(ctx, "sess-nick", LoginInput{Login: "player1", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "player@example.com", user.Email)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	store := sessions.NewMemoryStore()
	repo.mustAdd(t, "player@example.com", "player1", "secret123", true)

	svc := NewAuthService(repo, store)

	// Неизвестный идентификатор и неверный пароль дают одну и ту же ошибку.
	_, err := svc.Login(ctx, "sess-1", LoginInput{Login: "nobody@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(ctx, "sess-2", LoginInput{Login: "player1", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	// Сессия не аутентифицирована после провала
	_, err = store.UserID(ctx, "sess-2")
	assert.ErrorIs(t, err, sessions.ErrNotAuthenticated)
}

func TestLogin_InactiveAccount(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	store := sessions.NewMemoryStore()
	repo.mustAdd(t, "banned@example.com", "banned", "secret123", false)

	svc := NewAuthService(repo, store)

	_, err := svc.Login(ctx, "sess-1", LoginInput{Login: "banned@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrAuthInactiveAccount)

	_, err = store.UserID(ctx, "sess-1")
	assert.ErrorIs(t, err, sessions.ErrNotAuthenticated)
}

func TestRegister_CodeMismatchSkipsValidation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	store := sessions.NewMemoryStore()
	require.NoError(t, store.SetVerificationCode(ctx, "sess-1", "123456"))

	svc := NewAuthService(repo, store)

	// Пустой email провалил бы валидацию, но до неё дело не доходит.
	input := RegisterInput{VerificationCode: "654321"}
	_, err := svc.Register(ctx, "sess-1", input)
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)
	assert.Empty(t, repo.users)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	store := sessions.NewMemoryStore()
	require.NoError(t, store.SetVerificationCode(ctx, "sess-1", "123456"))

	svc := NewAuthService(repo, store)

	input := validRegisterInput("123456")
	input.PasswordConfirm = "different"
	_, err := svc.Register(ctx, "sess-1", input)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "passwords do not match", ve.Fields["password_confirm"])
	assert.Empty(t, repo.users)
}

func TestRegister_DuplicateCredentials(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	store := sessions.NewMemoryStore()
	repo.mustAdd(t, "new@example.com", "taken", "secret123", true)
	require.NoError(t, store.SetVerificationCode(ctx, "sess-1", "123456"))

	svc := NewAuthService(repo, store)

	// Занятый email
	_, err := svc.Register(ctx, "sess-1", validRegisterInput("123456"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")

	// Занятый никнейм
	input := validRegisterInput("123456")
	input.Email = "other@example.com"
	input.Nickname = "taken"
	_, err = svc.Register(ctx, "sess-1", input)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "nickname")
}

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	store := sessions.NewMemoryStore()
	require.NoError(t, store.SetVerificationCode(ctx, "sess-1", "123456"))

	svc := NewAuthService(repo, store)

	user, err := svc.Register(ctx, "sess-1", validRegisterInput("123456"))
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	assert.Empty(t, user.PasswordHash)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)

	// Пароль хранится только в виде bcrypt-хеша
	stored := repo.users[user.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "super_password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("super_password123")))

	// Сессия сразу аутентифицирована
	userID, err := store.UserID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestLogout_DestroysSession(t *testing.T) {
	ctx := context.Background()
	repo := newFakeUserRepo()
	store := sessions.NewMemoryStore()
	repo.mustAdd(t, "player@example.com", "player1", "secret123", true)

	svc := NewAuthService(repo, store)

	_, err := svc.Login(ctx, "sess-1", LoginInput{Login: "player1", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "sess-1"))
	_, err = store.UserID(ctx, "sess-1")
	assert.True(t, errors.Is(err, sessions.ErrNotAuthenticated))
}
