package cart

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("cart not found")

// Repository stores one cart per user as a set of lines. Adding a line that
// matches an existing (product, size, color) key increments its quantity;
// a quantity dropping to zero or below removes the line.
type Repository interface {
	Upsert(userID int, line Line, updatedAt string) ([]Item, error)
	Get(userID int) ([]Item, error)
	Clear(userID int, updatedAt string) error
}

// InMemoryRepository backs tests. It serves lines without product details.
type InMemoryRepository struct {
	mu    sync.RWMutex
	carts map[int]map[string]Line
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{carts: make(map[int]map[string]Line)}
}

func (r *InMemoryRepository) Upsert(userID int, line Line, updatedAt string) ([]Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines, ok := r.carts[userID]
	if !ok {
		lines = make(map[string]Line)
		r.carts[userID] = lines
	}

	k := line.key()
	existing := lines[k]
	line.Quantity += existing.Quantity
	if line.Quantity <= 0 {
		delete(lines, k)
	} else {
		lines[k] = line
	}
	return r.items(lines), nil
}

func (r *InMemoryRepository) Get(userID int) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items(r.carts[userID]), nil
}

func (r *InMemoryRepository) Clear(userID int, updatedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func (r *InMemoryRepository) items(lines map[string]Line) []Item {
	out := make([]Item, 0, len(lines))
	for _, l := range lines {
		out = append(out, Item{Line: l, InStock: true})
	}
	return out
}
