package domain

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationAccepted  ReservationStatus = "accepted"
	ReservationCancelled ReservationStatus = "cancelled"
)

// IsLive reports whether a reservation in this status occupies its slot.
func (s ReservationStatus) IsLive() bool {
	return s == ReservationPending || s == ReservationAccepted
}

// LiveStatuses lists the statuses that take part in conflict detection.
func LiveStatuses() []ReservationStatus {
	return []ReservationStatus{ReservationPending, ReservationAccepted}
}

type ReservationRequest struct {
	ID          int64             `json:"id"`
	OfferID     int64             `json:"offer_id"`
	RequesterID *int64            `json:"requester_id,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	Status      ReservationStatus `json:"status"`

	// Snapshot of the offer duration at submission time.
	DurationMinutes int `json:"duration_minutes"`

	CancelledBy *Actor     `json:"cancelled_by,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (r ReservationRequest) RequestedBy(userID int64) bool {
	return r.RequesterID != nil && *r.RequesterID == userID
}
