package sessions

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"scamtrap-lab/internal/domain/models"
)

// MemoryStore is a process-local store for tests and single-instance
// development runs. Sessions are stored as JSON so callers get the same
// copy semantics as the Redis store.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	locks map[string]*sync.Mutex
}

// NewMemoryStore creates an in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  map[string][]byte{},
		locks: map[string]*sync.Mutex{},
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	blob, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var sess models.Session
	if err := json.Unmarshal(blob, &sess); err != nil {
		return nil, err
	}
	if sess.Intelligence == nil {
		sess.Intelligence = &models.Intelligence{}
	}
	return &sess, nil
}

func (s *MemoryStore) Save(_ context.Context, sess *models.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	blob, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[sess.ID] = blob
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.data, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Acquire(_ context.Context, id string) (func(), error) {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock, nil
}
