// Package memstore is an in-memory satellite repository. It backs the
// service when no Postgres is configured and in tests.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TemirB/satrec-registry/internal/domain"
)

var _ domain.SatelliteRepository = (*Store)(nil)

// Store keeps satellites in insertion order. Values are copied on the way in
// and out, so callers never share memory with the store.
type Store struct {
	mu    sync.RWMutex
	data  map[string]domain.Satellite
	order []string
	now   func() time.Time
}

func New() *Store {
	return &Store{
		data: make(map[string]domain.Satellite),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Insert(ctx context.Context, sat *domain.Satellite) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rec := *sat
	rec.ID = uuid.NewString()
	rec.CreatedAt = s.now()
	rec.UpdatedAt = rec.CreatedAt

	s.mu.Lock()
	s.data[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	s.mu.Unlock()

	sat.ID, sat.CreatedAt, sat.UpdatedAt = rec.ID, rec.CreatedAt, rec.UpdatedAt
	return rec.ID, nil
}

// InsertMany stores the whole batch or nothing. Ids must be preset and unique.
func (s *Store) InsertMany(ctx context.Context, sats []domain.Satellite) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(sats))
	for _, sat := range sats {
		if sat.ID == "" {
			return 0, fmt.Errorf("insert many: %w: missing id", domain.ErrInvalidInput)
		}
		if _, dup := s.data[sat.ID]; dup {
			return 0, fmt.Errorf("insert many: %w %s", domain.ErrDuplicateID, sat.ID)
		}
		if _, dup := seen[sat.ID]; dup {
			return 0, fmt.Errorf("insert many: %w %s", domain.ErrDuplicateID, sat.ID)
		}
		seen[sat.ID] = struct{}{}
	}
	for _, sat := range sats {
		sat.CreatedAt, sat.UpdatedAt = now, now
		s.data[sat.ID] = sat
		s.order = append(s.order, sat.ID)
	}
	return len(sats), nil
}

func (s *Store) FindAll(ctx context.Context) ([]domain.Satellite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Satellite, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.data[id])
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*domain.Satellite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	sat, ok := s.data[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sat, nil
}

// Save replaces name, TLE and satrec of an existing record in one step.
func (s *Store) Save(ctx context.Context, sat *domain.Satellite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.data[sat.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name = sat.Name
	cur.TLE = sat.TLE
	cur.Satrec = sat.Satrec
	cur.UpdatedAt = s.now()
	s.data[sat.ID] = cur

	sat.CreatedAt, sat.UpdatedAt = cur.CreatedAt, cur.UpdatedAt
	return nil
}

func (s *Store) RemoveByID(ctx context.Context, id string) (*domain.Satellite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sat, ok := s.data[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.data, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return &sat, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
