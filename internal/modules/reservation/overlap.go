package reservation

import (
	"time"

	"flashwash/internal/domain"
)

// HasConflict reports whether any existing start lies strictly inside
// (candidate-duration, candidate+duration). All reservations of an offer
// share the offer's duration, so this guard band is equivalent to interval
// overlap for them.
func HasConflict(existing []time.Time, candidate time.Time, duration time.Duration) bool {
	_, ok := FirstConflict(existing, candidate, duration)
	return ok
}

// FirstConflict is HasConflict that also returns the offending start.
func FirstConflict(existing []time.Time, candidate time.Time, duration time.Duration) (time.Time, bool) {
	lo := candidate.Add(-duration)
	hi := candidate.Add(duration)
	for _, s := range existing {
		if s.After(lo) && s.Before(hi) {
			return s, true
		}
	}
	return time.Time{}, false
}

// LiveStarts returns the start times of the pending and accepted requests.
func LiveStarts(reqs []domain.ReservationRequest) []time.Time {
	out := make([]time.Time, 0, len(reqs))
	for _, r := range reqs {
		if r.Status.IsLive() {
			out = append(out, r.StartTime)
		}
	}
	return out
}
