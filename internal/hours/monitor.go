package hours

import (
	"context"
	"sync"
	"time"

	"delivery-marketplace/internal/models"

	"go.uber.org/zap"
)

// DefaultRefreshInterval is how often displayed vendors are re-evaluated.
const DefaultRefreshInterval = time.Minute

type trackedVendor struct {
	openingHours string
	timezone     string
}

// Monitor keeps the availability of tracked vendors current. Call Run in its
// own goroutine; Track and Availability are safe for concurrent use.
type Monitor struct {
	mu       sync.RWMutex
	vendors  map[string]trackedVendor
	latest   map[string]models.VendorAvailability
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewMonitor uses DefaultRefreshInterval when interval is not positive.
func NewMonitor(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		vendors:  make(map[string]trackedVendor),
		latest:   make(map[string]models.VendorAvailability),
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the time source; used by tests.
func (m *Monitor) WithClock(now func() time.Time) *Monitor {
	m.now = now
	return m
}

// Track registers or updates a vendor and evaluates it right away.
func (m *Monitor) Track(vendorID, openingHours, timezone string) models.VendorAvailability {
	v := trackedVendor{openingHours: openingHours, timezone: timezone}
	a := m.evaluate(vendorID, v)

	m.mu.Lock()
	m.vendors[vendorID] = v
	m.latest[vendorID] = a
	m.mu.Unlock()
	return a
}

// Untrack stops refreshing a vendor.
func (m *Monitor) Untrack(vendorID string) {
	m.mu.Lock()
	delete(m.vendors, vendorID)
	delete(m.latest, vendorID)
	m.mu.Unlock()
}

// Availability returns the last evaluation of a tracked vendor.
func (m *Monitor) Availability(vendorID string) (models.VendorAvailability, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.latest[vendorID]
	return a, ok
}

// Refresh re-evaluates every tracked vendor now.
func (m *Monitor) Refresh() {
	m.mu.RLock()
	snapshot := make(map[string]trackedVendor, len(m.vendors))
	for id, v := range m.vendors {
		snapshot[id] = v
	}
	m.mu.RUnlock()

	results := make(map[string]models.VendorAvailability, len(snapshot))
	for id, v := range snapshot {
		results[id] = m.evaluate(id, v)
	}

	m.mu.Lock()
	for id, a := range results {
		if _, still := m.vendors[id]; still {
			m.latest[id] = a
		}
	}
	m.mu.Unlock()
}

// Run refreshes on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Info("availability monitor started", zap.Duration("interval", m.interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("availability monitor stopped")
			return
		case <-ticker.C:
			m.Refresh()
		}
	}
}

func (m *Monitor) evaluate(vendorID string, v trackedVendor) models.VendorAvailability {
	if _, _, ok := ParseRange(v.openingHours); !ok {
		m.logger.Debug("unparsable opening hours, treating vendor as closed",
			zap.String("vendorID", vendorID), zap.String("openingHours", v.openingHours))
	}
	a := EvaluateIn(v.openingHours, v.timezone, m.now())
	return models.VendorAvailability{
		VendorID:     vendorID,
		OpeningHours: v.openingHours,
		Timezone:     v.timezone,
		IsOpen:       a.IsOpen,
		ClosingIn:    a.ClosingIn,
	}
}
