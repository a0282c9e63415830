package returns

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("return request not found")

type Repository interface {
	Create(ret ReturnRequest) (ReturnRequest, error)
	GetByID(id int) (ReturnRequest, error)
	ListByOrder(orderID int) ([]ReturnRequest, error)
	List() ([]ReturnRequest, error)

	// Update persists status, note and updatedAt. With restock set it also
	// re-increments the per-size inventory bucket for every returned item,
	// in the same transaction.
	Update(ret ReturnRequest, restock bool) (ReturnRequest, error)
}

// InMemoryRepository backs tests. Restock requests are counted but not
// applied to any inventory.
type InMemoryRepository struct {
	mu       sync.RWMutex
	returns  map[int]ReturnRequest
	nextID   int
	Restocks int
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{returns: make(map[int]ReturnRequest), nextID: 1}
}

func (r *InMemoryRepository) Create(ret ReturnRequest) (ReturnRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ret.ID = r.nextID
	r.nextID++
	r.returns[ret.ID] = ret
	return ret, nil
}

func (r *InMemoryRepository) GetByID(id int) (ReturnRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ret, ok := r.returns[id]
	if !ok {
		return ReturnRequest{}, ErrNotFound
	}
	return ret, nil
}

func (r *InMemoryRepository) ListByOrder(orderID int) ([]ReturnRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ReturnRequest, 0)
	for _, ret := range r.returns {
		if ret.OrderID == orderID {
			out = append(out, ret)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) List() ([]ReturnRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ReturnRequest, 0, len(r.returns))
	for _, ret := range r.returns {
		out = append(out, ret)
	}
	return out, nil
}

func (r *InMemoryRepository) Update(ret ReturnRequest, restock bool) (ReturnRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.returns[ret.ID]; !ok {
		return ReturnRequest{}, ErrNotFound
	}
	if restock {
		r.Restocks++
	}
	r.returns[ret.ID] = ret
	return ret, nil
}
