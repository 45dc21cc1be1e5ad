package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/internal/pricing"

	"github.com/shopspring/decimal"
)

// Store is one customer's cart: an ordered list of line items with at most
// one line per product id. All methods are safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	customerID string
	items      []models.LineItem
	index      map[string]int
	notifier   Notifier
	now        func() time.Time
}

// NewStore returns an empty cart. A nil notifier disables notifications.
func NewStore(customerID string, notifier Notifier) *Store {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Store{
		customerID: customerID,
		index:      make(map[string]int),
		notifier:   notifier,
		now:        time.Now,
	}
}

// AddOrUpdate adjusts the quantity of item.ID by delta.
//
// A product that is not in the cart yet is inserted with quantity 1 whatever
// the size of a positive delta. A line that drops to zero or below is removed.
// Decrementing a product that is not in the cart does nothing.
func (s *Store) AddOrUpdate(ctx context.Context, item models.LineItem, delta int) error {
	if delta == 0 {
		return models.ErrZeroQuantityDelta
	}
	if item.Variant == "" {
		item.Variant = models.VariantImmediate
	}
	if err := item.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	event, changed := s.applyDelta(item, delta)
	s.mu.Unlock()

	if changed {
		s.notifier.CartChanged(ctx, event)
	}
	return nil
}

func (s *Store) applyDelta(item models.LineItem, delta int) (models.CartEvent, bool) {
	pos, ok := s.index[item.ID]
	if !ok {
		if delta < 0 {
			return models.CartEvent{}, false
		}
		line := item.Clone()
		line.Quantity = 1
		s.items = append(s.items, line)
		s.index[line.ID] = len(s.items) - 1
		return s.event(models.CartItemAdded, line.ID, 1), true
	}

	qty := s.items[pos].Quantity + delta
	if qty <= 0 {
		s.removeAt(pos)
		return s.event(models.CartItemRemoved, item.ID, 0), true
	}
	s.items[pos].Quantity = qty
	return s.event(models.CartItemUpdated, item.ID, qty), true
}

// PutPreOrder inserts a pre-order line or replaces the existing line for the
// same product, keeping its position.
func (s *Store) PutPreOrder(ctx context.Context, item models.LineItem) error {
	if item.Variant != models.VariantPreOrder {
		return fmt.Errorf("%w: expected a pre-order line", models.ErrInvalidItem)
	}
	if err := item.Validate(); err != nil {
		return err
	}
	if item.Quantity < 1 {
		return fmt.Errorf("%w: servings must be at least 1", models.ErrInvalidItem)
	}

	line := item.Clone()
	s.mu.Lock()
	if pos, ok := s.index[line.ID]; ok {
		s.items[pos] = line
	} else {
		s.items = append(s.items, line)
		s.index[line.ID] = len(s.items) - 1
	}
	event := s.event(models.CartPreOrderSet, line.ID, line.Quantity)
	s.mu.Unlock()

	s.notifier.CartChanged(ctx, event)
	return nil
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []models.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LineItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out
}

// Subtotal is recomputed from the current lines on every call.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pricing.Subtotal(s.items)
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// View renders the cart for the API.
func (s *Store) View() models.CartView {
	return models.NewCartView(s.Items())
}

// Clear empties the cart. Clearing an empty cart does not notify.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	hadItems := len(s.items) > 0
	s.items = nil
	s.index = make(map[string]int)
	event := s.event(models.CartCleared, "", 0)
	s.mu.Unlock()

	if hadItems {
		s.notifier.CartChanged(ctx, event)
	}
}

// RemoveOrdered takes the ordered lines out of the cart. Quantities added
// after the order was snapshotted stay, as do lines that were not ordered.
// A single event is sent when anything changed.
func (s *Store) RemoveOrdered(ctx context.Context, ordered []models.LineItem) {
	s.mu.Lock()
	changed := false
	for _, o := range ordered {
		pos, ok := s.index[o.ID]
		if !ok {
			continue
		}
		changed = true
		if qty := s.items[pos].Quantity - o.Quantity; qty > 0 {
			s.items[pos].Quantity = qty
			continue
		}
		s.removeAt(pos)
	}
	event := s.event(models.CartOrdered, "", len(s.items))
	s.mu.Unlock()

	if changed {
		s.notifier.CartChanged(ctx, event)
	}
}

func (s *Store) removeAt(pos int) {
	delete(s.index, s.items[pos].ID)
	s.items = append(s.items[:pos], s.items[pos+1:]...)
	for i := pos; i < len(s.items); i++ {
		s.index[s.items[i].ID] = i
	}
}

func (s *Store) event(action models.CartAction, itemID string, qty int) models.CartEvent {
	return models.CartEvent{
		CustomerID: s.customerID,
		Action:     action,
		ItemID:     itemID,
		Quantity:   qty,
		At:         s.now(),
	}
}
