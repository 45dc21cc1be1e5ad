package cart

import (
	"context"
	"sync"
	"time"

	"delivery-marketplace/internal/models"
	"delivery-marketplace/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	subscriberBuffer = 16
	writeWait        = 10 * time.Second
	pingPeriod       = 30 * time.Second
)

// Hub fans cart events out to live subscribers of the same customer. Slow
// subscribers miss events rather than block the cart.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan models.CartEvent]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan models.CartEvent]struct{})}
}

func (h *Hub) CartChanged(_ context.Context, e models.CartEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[e.CustomerID] {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns a channel of the customer's events and a func that
// unsubscribes and closes it.
func (h *Hub) Subscribe(customerID string) (<-chan models.CartEvent, func()) {
	ch := make(chan models.CartEvent, subscriberBuffer)
	h.mu.Lock()
	if h.subs[customerID] == nil {
		h.subs[customerID] = make(map[chan models.CartEvent]struct{})
	}
	h.subs[customerID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[customerID], ch)
			if len(h.subs[customerID]) == 0 {
				delete(h.subs, customerID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// CartUpdate is one message on the cart event stream.
type CartUpdate struct {
	Event *models.CartEvent `json:"event,omitempty"`
	Cart  models.CartView   `json:"cart"`
}

var upgrader = websocket.Upgrader{}

// EventsHandler streams cart changes over a WebSocket.
type EventsHandler struct {
	carts  *Registry
	hub    *Hub
	logger *zap.Logger
}

func NewEventsHandler(carts *Registry, hub *Hub, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{carts: carts, hub: hub, logger: logger}
}

// StreamEvents sends the current cart, then one update per change until the
// client goes away.
func (h *EventsHandler) StreamEvents(c echo.Context) error {
	session, err := utils.ExtractSession(c)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	events, unsubscribe := h.hub.Subscribe(session.CustomerID)
	defer unsubscribe()

	store := h.carts.For(session.CustomerID)
	if err := h.write(conn, CartUpdate{Cart: store.View()}); err != nil {
		return nil
	}

	// The reader only detects the close; clients never send data.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err := h.write(conn, CartUpdate{Event: &e, Cart: h.carts.For(session.CustomerID).View()}); err != nil {
				h.logger.Debug("cart stream closed", zap.String("customerID", session.CustomerID), zap.Error(err))
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		}
	}
}

func (h *EventsHandler) write(conn *websocket.Conn, u CartUpdate) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(u)
}
