// Package hours decides whether a vendor is open from its free-text opening
// hours ("9:00am - 10:00pm", "08:00 - 17:30", "10pm - 2am").
//
// Parsing never fails loudly: anything that cannot be understood evaluates to
// closed, because the result feeds availability badges on vendor cards.
package hours

import (
	"fmt"
	"strings"
	"time"
)

const rangeDelimiter = " - "

// clockLayouts are tried in order: 24-hour first, then 12-hour.
var clockLayouts = []string{"15:04", "3:04pm", "3pm"}

// Availability is the result of an evaluation. ClosingIn is empty when closed.
type Availability struct {
	IsOpen    bool   `json:"is_open"`
	ClosingIn string `json:"closing_in,omitempty"`
}

// Evaluate reports whether now falls inside openingHours. The window is
// start-inclusive and end-exclusive; an end before the start belongs to the
// next day, so a window opened yesterday evening can still be running.
func Evaluate(openingHours string, now time.Time) Availability {
	start, end, ok := ParseRange(openingHours)
	if !ok {
		return Availability{}
	}

	for _, dayOffset := range []int{0, -1} {
		opens := onDay(now, start, dayOffset)
		closes := onDay(now, end, dayOffset)
		if closes.Before(opens) {
			closes = closes.AddDate(0, 0, 1)
		}
		if !now.Before(opens) && now.Before(closes) {
			return Availability{IsOpen: true, ClosingIn: FormatRemaining(closes.Sub(now))}
		}
	}
	return Availability{}
}

// EvaluateIn converts now to the vendor's timezone first. An empty timezone
// keeps now's location; an unknown one evaluates to closed.
func EvaluateIn(openingHours, timezone string, now time.Time) Availability {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return Availability{}
		}
		now = now.In(loc)
	}
	return Evaluate(openingHours, now)
}

// ParseRange splits "<start> - <end>" and parses both clock times. Only the
// hour and minute of the returned values are meaningful.
func ParseRange(openingHours string) (start, end time.Time, ok bool) {
	parts := strings.Split(openingHours, rangeDelimiter)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, false
	}
	start, ok = ParseClock(parts[0])
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	end, ok = ParseClock(parts[1])
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// ParseClock accepts "HH:mm", "h:mma" and "ha" in any case.
func ParseClock(token string) (time.Time, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return time.Time{}, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatRemaining renders d as "<H>h <M>m", dropping the hours when zero.
// Partial minutes are truncated.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	h, m := total/60, total%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

func onDay(now, clock time.Time, dayOffset int) time.Time {
	y, mo, d := now.Date()
	return time.Date(y, mo, d+dayOffset, clock.Hour(), clock.Minute(), 0, 0, now.Location())
}
