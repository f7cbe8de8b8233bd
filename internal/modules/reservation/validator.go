package reservation

import (
	"time"

	"github.com/juju/clock"

	"flashwash/internal/domain"
)

// Validator decides whether a start time may be admitted for an offer.
type Validator struct {
	clock       clock.Clock
	defaultZone *time.Location
}

// NewValidator returns a Validator reading the current time from clk.
// Providers without a timezone are evaluated in zone.
func NewValidator(clk clock.Clock, zone *time.Location) *Validator {
	if clk == nil {
		clk = clock.WallClock
	}
	if zone == nil {
		zone = time.UTC
	}
	return &Validator{clock: clk, defaultZone: zone}
}

// Validate runs, in order, the future-start, operating-hours and overlap
// checks and returns a *Rejection for the first one that fails. live must
// hold the reservations of the same offer.
func (v *Validator) Validate(start time.Time, offer *domain.Offer, provider *domain.Provider, live []domain.ReservationRequest) error {
	now := v.clock.Now()
	if !start.After(now) {
		return &Rejection{Reason: ErrPastStartTime, Start: start, Now: &now}
	}

	if !IsOpenAt(provider.Windows, start.In(v.zoneFor(provider))) {
		w := provider.Windows
		return &Rejection{Reason: ErrOutsideOperatingHours, Start: start, Windows: &w}
	}

	if s, ok := FirstConflict(LiveStarts(live), start, offer.Duration()); ok {
		return &Rejection{Reason: ErrSlotConflict, Start: start, ConflictsWith: &s}
	}
	return nil
}

func (v *Validator) zoneFor(p *domain.Provider) *time.Location {
	if p.Timezone == "" {
		return v.defaultZone
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		logger.Warningf("provider %d has invalid timezone %q, using %s", p.ID, p.Timezone, v.defaultZone)
		return v.defaultZone
	}
	return loc
}
