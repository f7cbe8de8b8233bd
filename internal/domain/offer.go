package domain

import "time"

type Offer struct {
	ID              int64     `json:"id"`
	ProviderID      int64     `json:"provider_id"`
	OfferTypeID     *int64    `json:"offer_type_id,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (o Offer) Duration() time.Duration {
	return time.Duration(o.DurationMinutes) * time.Minute
}

// OfferType groups offers for browsing, e.g. "Exterior" or "Detailing".
type OfferType struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
