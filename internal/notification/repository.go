package notification

import "sync"

// Repository is the append-only notification log. Entries are never updated
// or deleted.
type Repository interface {
	Record(e Entry) error
	ListByOrderID(orderID int) ([]Entry, error)
}

// InMemoryRepository backs dispatcher tests.
type InMemoryRepository struct {
	mu      sync.Mutex
	entries []Entry
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Record(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = len(r.entries) + 1
	r.entries = append(r.entries, e)
	return nil
}

func (r *InMemoryRepository) ListByOrderID(orderID int) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0)
	for _, e := range r.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}
