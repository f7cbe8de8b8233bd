package reservation

import (
	"time"

	"flashwash/internal/domain"
)

// IsOpenAt reports whether the hour and minute of start fall inside the
// provider's windows. Both ends of each window are inclusive, so start times
// equal to MorningEnd or EveningStart are open. The date is ignored.
func IsOpenAt(w domain.OperatingWindows, start time.Time) bool {
	t := domain.TimeOfDayOf(start)
	if t < w.MorningStart || t > w.EveningEnd {
		return false
	}
	if t > w.MorningEnd && t < w.EveningStart {
		return false
	}
	return true
}
