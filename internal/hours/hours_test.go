package hours

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 14, h, m, 0, 0, time.UTC)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		hours     string
		now       time.Time
		isOpen    bool
		closingIn string
	}{
		{name: "12h inside", hours: "9:00am - 10:00pm", now: at(20, 30), isOpen: true, closingIn: "1h 30m"},
		{name: "12h before opening", hours: "9:00am - 10:00pm", now: at(8, 59), isOpen: false},
		{name: "opening minute is inclusive", hours: "9:00am - 10:00pm", now: at(9, 0), isOpen: true, closingIn: "13h 0m"},
		{name: "closing minute is exclusive", hours: "9:00am - 10:00pm", now: at(22, 0), isOpen: false},
		{name: "24h format", hours: "08:00 - 17:30", now: at(17, 5), isOpen: true, closingIn: "25m"},
		{name: "single digit 24h hour", hours: "9:00 - 17:00", now: at(10, 0), isOpen: true, closingIn: "7h 0m"},
		{name: "hour only", hours: "9am - 5pm", now: at(16, 0), isOpen: true, closingIn: "1h 0m"},
		{name: "upper case meridiem", hours: "9:00AM - 5:00PM", now: at(12, 0), isOpen: true, closingIn: "5h 0m"},
		{name: "overnight after midnight", hours: "10:00pm - 2:00am", now: at(0, 30), isOpen: true, closingIn: "1h 30m"},
		{name: "overnight before midnight", hours: "10:00pm - 2:00am", now: at(23, 0), isOpen: true, closingIn: "3h 0m"},
		{name: "overnight closed afternoon", hours: "10:00pm - 2:00am", now: at(14, 0), isOpen: false},
		{name: "missing delimiter", hours: "9:00am-10:00pm", now: at(12, 0), isOpen: false},
		{name: "garbage", hours: "whenever", now: at(12, 0), isOpen: false},
		{name: "empty", hours: "", now: at(12, 0), isOpen: false},
		{name: "too many parts", hours: "9am - 1pm - 5pm", now: at(12, 0), isOpen: false},
		{name: "zero length window", hours: "9:00 - 9:00", now: at(9, 0), isOpen: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.hours, tt.now)
			assert.Equal(t, tt.isOpen, got.IsOpen)
			assert.Equal(t, tt.closingIn, got.ClosingIn)
		})
	}
}

func TestEvaluateTruncatesSeconds(t *testing.T) {
	now := time.Date(2026, 3, 14, 21, 58, 30, 0, time.UTC)
	got := Evaluate("9:00am - 10:00pm", now)
	require.True(t, got.IsOpen)
	assert.Equal(t, "1m", got.ClosingIn)
}

func TestEvaluateIn(t *testing.T) {
	// 06:30 UTC is 09:30 in Nairobi.
	now := at(6, 30)
	assert.True(t, EvaluateIn("9:00am - 5:00pm", "Africa/Nairobi", now).IsOpen)
	assert.False(t, EvaluateIn("9:00am - 5:00pm", "", now).IsOpen)
	assert.False(t, EvaluateIn("9:00am - 5:00pm", "Not/AZone", now).IsOpen)
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "0m", FormatRemaining(0))
	assert.Equal(t, "0m", FormatRemaining(-time.Minute))
	assert.Equal(t, "59m", FormatRemaining(59*time.Minute+59*time.Second))
	assert.Equal(t, "2h 5m", FormatRemaining(2*time.Hour+5*time.Minute))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func TestMonitorTrackAndRefresh(t *testing.T) {
	clock := &fakeClock{now: at(21, 0)}
	m := NewMonitor(time.Minute, zap.NewNop()).WithClock(clock.Now)

	a := m.Track("v1", "9:00am - 10:00pm", "")
	assert.True(t, a.IsOpen)
	assert.Equal(t, "1h 0m", a.ClosingIn)
	assert.Equal(t, "v1", a.VendorID)

	clock.Set(at(22, 1))
	stale, ok := m.Availability("v1")
	require.True(t, ok)
	assert.True(t, stale.IsOpen, "availability only changes on refresh")

	m.Refresh()
	fresh, ok := m.Availability("v1")
	require.True(t, ok)
	assert.False(t, fresh.IsOpen)
	assert.Empty(t, fresh.ClosingIn)

	m.Untrack("v1")
	_, ok = m.Availability("v1")
	assert.False(t, ok)
}

func TestMonitorRunRefreshesOnTick(t *testing.T) {
	clock := &fakeClock{now: at(8, 0)}
	m := NewMonitor(10*time.Millisecond, zap.NewNop()).WithClock(clock.Now)
	m.Track("v1", "9am - 5pm", "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	clock.Set(at(9, 30))
	assert.Eventually(t, func() bool {
		a, _ := m.Availability("v1")
		return a.IsOpen
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}
