package reservation

import (
	"time"

	"flashwash/internal/domain"
)

type SubmitRequestBody struct {
	OfferID   int64     `json:"offer_id" binding:"required,gt=0"`
	StartTime time.Time `json:"start_time" binding:"required"`
}

type ReservationResponse struct {
	ID              int64                    `json:"id"`
	OfferID         int64                    `json:"offer_id"`
	RequesterID     *int64                   `json:"requester_id,omitempty"`
	StartTime       time.Time                `json:"start_time"`
	DurationMinutes int                      `json:"duration_minutes"`
	Status          domain.ReservationStatus `json:"status"`
	CancelledBy     *domain.Actor            `json:"cancelled_by,omitempty"`
	CancelledAt     *time.Time               `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

func toResponse(r *domain.ReservationRequest) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		OfferID:         r.OfferID,
		RequesterID:     r.RequesterID,
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
		Status:          r.Status,
		CancelledBy:     r.CancelledBy,
		CancelledAt:     r.CancelledAt,
		CreatedAt:       r.CreatedAt,
	}
}

func toResponses(rs []domain.ReservationRequest) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(rs))
	for i := range rs {
		out = append(out, toResponse(&rs[i]))
	}
	return out
}

type ListingResponse struct {
	ReservationResponse
	Offer *domain.Offer `json:"offer,omitempty"`
}

func toListingResponses(ls []Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(ls))
	for i := range ls {
		out = append(out, ListingResponse{ReservationResponse: toResponse(&ls[i].Request), Offer: ls[i].Offer})
	}
	return out
}
