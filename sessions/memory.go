package sessions

import (
	"context"
	"strconv"
	"sync"
)

// memoryStore — хранилище сессий в памяти процесса.
// Используется в тестах вместо Redis.
type memoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() Store {
	return &memoryStore{data: make(map[string]map[string]string)}
}

func (s *memoryStore) setField(sessionID, field, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.data[sessionID]
	if !ok {
		session = make(map[string]string)
		s.data[sessionID] = session
	}
	session[field] = value
}

func (s *memoryStore) getField(sessionID, field string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.data[sessionID]
	if !ok {
		return "", false
	}
	value, ok := session[field]
	return value, ok
}

func (s *memoryStore) SetVerificationCode(_ context.Context, sessionID, code string) error {
	s.setField(sessionID, fieldVerificationCode, code)
	return nil
}

func (s *memoryStore) VerificationCode(_ context.Context, sessionID string) (string, error) {
	code, _ := s.getField(sessionID, fieldVerificationCode)
	return code, nil
}

func (s *memoryStore) SetUserID(_ context.Context, sessionID string, userID int) error {
	s.setField(sessionID, fieldUserID, strconv.Itoa(userID))
	return nil
}

func (s *memoryStore) UserID(_ context.Context, sessionID string) (int, error) {
	raw, ok := s.getField(sessionID, fieldUserID)
	if !ok {
		return 0, ErrNotAuthenticated
	}
	userID, err := strconv.Atoi(raw)
	if err != nil || userID <= 0 {
		return 0, ErrNotAuthenticated
	}
	return userID, nil
}

func (s *memoryStore) Destroy(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}
