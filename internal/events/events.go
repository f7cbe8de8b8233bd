// Package events publishes reservation lifecycle events for audit consumers.
package events

import (
	"context"
	"time"
)

type Type string

const (
	ReservationSubmitted Type = "reservation.submitted"
	ReservationAccepted  Type = "reservation.accepted"
	ReservationCancelled Type = "reservation.cancelled"
)

// Event carries enough of the reservation for consumers to build an audit
// trail without reading the primary database.
type Event struct {
	Type          Type      `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	OfferID       int64     `json:"offer_id"`
	RequesterID   *int64    `json:"requester_id,omitempty"`
	StartTime     time.Time `json:"start_time"`
	Status        string    `json:"status"`
	ActorRole     string    `json:"actor_role,omitempty"`
	ActorID       int64     `json:"actor_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Noop discards events. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
