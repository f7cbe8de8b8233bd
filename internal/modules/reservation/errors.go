package reservation

import (
	"errors"
	"fmt"
	"time"

	"flashwash/internal/domain"
)

var (
	ErrPastStartTime         = errors.New("start time is not in the future")
	ErrOutsideOperatingHours = errors.New("start time is outside operating hours")
	ErrSlotConflict          = errors.New("slot conflicts with an existing reservation")

	ErrRequestNotFound = errors.New("reservation request not found")
	ErrNotCancelable   = errors.New("reservation request is not pending")
	ErrNotAuthorized   = errors.New("not authorized")
	ErrOfferNotFound   = errors.New("offer not found")
	ErrValidation      = errors.New("validation error")

	// The offer exists but its provider row does not.
	ErrProviderNotFound = errors.New("provider not found")
)

// Rejection is returned when a submitted start time cannot be admitted.
// It wraps one of ErrPastStartTime, ErrOutsideOperatingHours or ErrSlotConflict.
type Rejection struct {
	Reason error
	Start  time.Time

	// Set for ErrPastStartTime.
	Now *time.Time
	// Set for ErrOutsideOperatingHours.
	Windows *domain.OperatingWindows
	// Set for ErrSlotConflict when the conflicting start is known.
	ConflictsWith *time.Time
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%v: %s", r.Reason, r.Start.Format(time.RFC3339))
}

func (r *Rejection) Unwrap() error { return r.Reason }

// Details is the client-facing explanation used to pick another time.
func (r *Rejection) Details() map[string]any {
	d := map[string]any{"start_time": r.Start}
	if r.Now != nil {
		d["now"] = *r.Now
	}
	if r.Windows != nil {
		d["windows"] = r.Windows
	}
	if r.ConflictsWith != nil {
		d["conflicts_with"] = *r.ConflictsWith
	}
	return d
}
