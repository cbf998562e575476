package reminders

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/geokeeper/internal/client/models"
	"github.com/dmitrijs2005/geokeeper/internal/common"
)

// MemoryStore is an in-memory Store. Upsert replaces a matching record in
// place and appends otherwise. A configured fault makes every call fail.
type MemoryStore struct {
	mu    sync.Mutex
	items []models.Reminder
	fault error
}

// NewMemoryStore returns a store seeded with copies of seed.
func NewMemoryStore(seed ...models.Reminder) *MemoryStore {
	s := &MemoryStore{items: make([]models.Reminder, 0, len(seed))}
	for _, r := range seed {
		s.items = append(s.items, clone(r))
	}
	return s
}

// Fail makes every subsequent call return err; nil clears the fault.
func (s *MemoryStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = err
}

func (s *MemoryStore) GetAll(ctx context.Context) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault != nil {
		return nil, s.fault
	}

	out := make([]models.Reminder, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, clone(r))
	}
	return out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault != nil {
		return nil, s.fault
	}

	if i := s.indexOf(id); i >= 0 {
		r := clone(s.items[i])
		return &r, nil
	}
	return nil, fmt.Errorf("reminder %s: %w", id, common.ErrorNotFound)
}

func (s *MemoryStore) Upsert(ctx context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault != nil {
		return s.fault
	}

	if i := s.indexOf(r.ID); i >= 0 {
		s.items[i] = clone(*r)
		return nil
	}
	s.items = append(s.items, clone(*r))
	return nil
}

func (s *MemoryStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault != nil {
		return s.fault
	}
	s.items = s.items[:0]
	return nil
}

func (s *MemoryStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// clone detaches the optional fields so callers cannot mutate stored state.
func clone(r models.Reminder) models.Reminder {
	c := r
	c.Title = copyPtr(r.Title)
	c.Description = copyPtr(r.Description)
	c.Location = copyPtr(r.Location)
	c.Latitude = copyPtr(r.Latitude)
	c.Longitude = copyPtr(r.Longitude)
	return c
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
