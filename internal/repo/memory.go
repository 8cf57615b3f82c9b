package repo

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-products-api/internal/domain"
)

// ErrNotFound is returned when a product id does not exist. It aliases
// gorm.ErrRecordNotFound so both backends report the same sentinel.
var ErrNotFound = gorm.ErrRecordNotFound

// MemoryStore keeps products in process memory.
//
// Products are held in a map keyed by id plus a slice recording insertion
// order, so List is stable across calls. All methods are safe for concurrent
// use: mutations take the write lock and List copies under the read lock, so
// a snapshot never observes a half-applied change.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]domain.Product
	order []string

	newID func() string
}

// NewMemoryStore returns an empty store that assigns UUIDv4 ids.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]domain.Product),
		newID: uuid.NewString,
	}
}

// Create assigns a fresh id, stores the product, and returns a copy.
func (s *MemoryStore) Create(_ context.Context, f domain.ProductFields) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for {
		if _, taken := s.items[id]; !taken {
			break
		}
		id = s.newID()
	}

	p := domain.NewProduct(id, f)
	s.items[id] = p
	s.order = append(s.order, id)
	return &p, nil
}

// Get returns a copy of the product with the given id, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// List returns a snapshot of every product in insertion order. Mutating the
// returned slice never affects stored state.
func (s *MemoryStore) List(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

// Replace overwrites every field except the id. It returns ErrNotFound when
// the id is unknown.
func (s *MemoryStore) Replace(_ context.Context, id string, f domain.ProductFields) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return nil, ErrNotFound
	}
	p := domain.NewProduct(id, f)
	s.items[id] = p
	return &p, nil
}

// Remove deletes the product with the given id, or returns ErrNotFound.
func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
