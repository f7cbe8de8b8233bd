package catalog

import (
	"fmt"

	"flashwash/internal/domain"
)

// ---------- HOURS ----------

type WindowsRequest struct {
	MorningStart string `json:"morning_start" validate:"required"`
	MorningEnd   string `json:"morning_end" validate:"required"`
	EveningStart string `json:"evening_start" validate:"required"`
	EveningEnd   string `json:"evening_end" validate:"required"`
}

func (r WindowsRequest) toDomain() (domain.OperatingWindows, error) {
	var w domain.OperatingWindows
	fields := []struct {
		name string
		raw  string
		dst  *domain.TimeOfDay
	}{
		{"morning_start", r.MorningStart, &w.MorningStart},
		{"morning_end", r.MorningEnd, &w.MorningEnd},
		{"evening_start", r.EveningStart, &w.EveningStart},
		{"evening_end", r.EveningEnd, &w.EveningEnd},
	}
	for _, f := range fields {
		v, err := domain.ParseTimeOfDay(f.raw)
		if err != nil {
			return w, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return w, w.Validate()
}

type UpdateHoursRequest struct {
	WindowsRequest
	Timezone string `json:"timezone,omitempty"`
}

// ---------- PROVIDER ----------

type CreateProviderRequest struct {
	Name     string `json:"name" validate:"required"`
	Timezone string `json:"timezone,omitempty"`
	WindowsRequest
}

// ---------- OFFER ----------

type CreateOfferRequest struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	DurationMinutes *int   `json:"duration_minutes" validate:"required,gte=0,lte=1440"`
	OfferTypeID     *int64 `json:"offer_type_id,omitempty" validate:"omitempty,gt=0"`
}

// UpdateOfferRequest carries the fields to change; absent fields keep their
// value. DurationMinutes is accepted only to be refused.
type UpdateOfferRequest struct {
	Title           *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description     *string `json:"description,omitempty"`
	OfferTypeID     *int64  `json:"offer_type_id,omitempty" validate:"omitempty,gt=0"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
}

// ---------- OFFER TYPE ----------

type CreateOfferTypeRequest struct {
	Title string `json:"title" validate:"required,max=100"`
}
