package catalog

import "errors"

var (
	ErrForbidden        = errors.New("forbidden")
	ErrProviderNotFound = errors.New("provider not found")
	ErrOfferNotFound    = errors.New("offer not found")
	ErrInvalidTimezone  = errors.New("invalid timezone")
	ErrInvalidDuration  = errors.New("duration must be between 0 and 1440 minutes")

	ErrDurationImmutable    = errors.New("offer duration cannot be changed")
	ErrOfferHasReservations = errors.New("offer has pending or accepted reservations")

	ErrOfferTypeNotFound = errors.New("offer type not found")
	ErrOfferTypeExists   = errors.New("offer type already exists")
)
