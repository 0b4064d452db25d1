package sessionsvc

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a Store local to the process.
type MemoryStore struct {
	mutex   sync.Mutex
	captcha map[string]memoryEntry
	revoked map[string]time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		captcha: make(map[string]memoryEntry),
		revoked: make(map[string]time.Time),
	}
}

// purge drops expired entries. Must be called with the mutex held.
func (s *MemoryStore) purge(now time.Time) {
	for id, e := range s.captcha {
		if !now.Before(e.expiresAt) {
			delete(s.captcha, id)
		}
	}
	for id, exp := range s.revoked {
		if !now.Before(exp) {
			delete(s.revoked, id)
		}
	}
}

func (s *MemoryStore) PutCaptcha(ctx context.Context, id, answer string, ttl time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := NowFunc()
	s.purge(now)
	s.captcha[id] = memoryEntry{value: answer, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) TakeCaptcha(ctx context.Context, id string) (string, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	e, ok := s.captcha[id]
	if !ok {
		return "", false, nil
	}
	delete(s.captcha, id)
	if !NowFunc().Before(e.expiresAt) {
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := NowFunc()
	s.purge(now)
	if expiresAt.After(now) {
		s.revoked[tokenID] = expiresAt
	}
	return nil
}

func (s *MemoryStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	exp, ok := s.revoked[tokenID]
	return ok && NowFunc().Before(exp), nil
}
