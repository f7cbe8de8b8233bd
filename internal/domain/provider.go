package domain

import (
	"errors"
	"time"
)

var ErrWindowOrder = errors.New("operating windows must satisfy morning_start <= morning_end <= evening_start <= evening_end")

// OperatingWindows are the two daily open intervals of a provider:
// [MorningStart, MorningEnd] and [EveningStart, EveningEnd].
type OperatingWindows struct {
	MorningStart TimeOfDay `json:"morning_start"`
	MorningEnd   TimeOfDay `json:"morning_end"`
	EveningStart TimeOfDay `json:"evening_start"`
	EveningEnd   TimeOfDay `json:"evening_end"`
}

func (w OperatingWindows) Validate() error {
	if w.MorningStart > w.MorningEnd || w.MorningEnd > w.EveningStart || w.EveningStart > w.EveningEnd {
		return ErrWindowOrder
	}
	return nil
}

type Provider struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Timezone  string           `json:"timezone,omitempty"`
	Windows   OperatingWindows `json:"windows"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
