package catalog

import (
	"fmt"
	"time"
)

const (
	// SlotMinutes is the length of one intraday slot.
	SlotMinutes = 15
	// SlotsPerHour converts slot sums into hour equivalents.
	SlotsPerHour = 60 / SlotMinutes
	// SlotsPerDay is the cardinality of the canonical time axis.
	SlotsPerDay = 24 * SlotsPerHour
)

// TimeOfDay is a wall-clock label, in minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses an HH:MM label.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// At builds a label from hours and minutes.
func At(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// Duration is the offset of the label from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t) * time.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Slots returns the canonical time axis: SlotsPerDay labels ascending from
// 00:00.
func Slots() []TimeOfDay {
	out := make([]TimeOfDay, SlotsPerDay)
	for i := range out {
		out[i] = TimeOfDay(i * SlotMinutes)
	}
	return out
}
