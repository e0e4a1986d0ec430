package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/kiril6/users-directory/internal/directory/models"
	"github.com/kiril6/users-directory/pkg/sentinel"
)

// InMemoryStore keeps pages in a plain map. It is the default when Redis is
// not configured and favors clarity over eviction sophistication: entries
// live for the process lifetime.
type InMemoryStore struct {
	mu    sync.RWMutex
	pages map[string][]models.RawRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{pages: make(map[string][]models.RawRecord)}
}

func (s *InMemoryStore) GetPage(_ context.Context, key string) ([]models.RawRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if page, ok := s.pages[key]; ok {
		return page, nil
	}
	return nil, fmt.Errorf("page %q: %w", key, sentinel.ErrNotFound)
}

func (s *InMemoryStore) PutPage(_ context.Context, key string, page []models.RawRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[key] = page
	return nil
}
