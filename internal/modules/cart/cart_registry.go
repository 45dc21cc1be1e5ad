package cart

import "sync"

// Registry holds one Store per customer for the lifetime of the process.
// Carts are not persisted.
type Registry struct {
	mu       sync.RWMutex
	stores   map[string]*Store
	notifier Notifier
}

// NewRegistry creates a registry whose stores share notifier.
func NewRegistry(notifier Notifier) *Registry {
	return &Registry{
		stores:   make(map[string]*Store),
		notifier: notifier,
	}
}

// For returns the customer's cart, creating an empty one on first use.
func (r *Registry) For(customerID string) *Store {
	r.mu.RLock()
	s, ok := r.stores[customerID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[customerID]; ok {
		return s
	}
	s = NewStore(customerID, r.notifier)
	r.stores[customerID] = s
	return s
}

// Drop forgets the customer's cart; used at logout.
func (r *Registry) Drop(customerID string) {
	r.mu.Lock()
	delete(r.stores, customerID)
	r.mu.Unlock()
}
