package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flashwash/internal/domain"
)

func standardWindows() domain.OperatingWindows {
	return domain.OperatingWindows{
		MorningStart: domain.NewTimeOfDay(8, 0),
		MorningEnd:   domain.NewTimeOfDay(12, 0),
		EveningStart: domain.NewTimeOfDay(14, 0),
		EveningEnd:   domain.NewTimeOfDay(18, 0),
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2030, 1, 7, hour, minute, 0, 0, time.UTC)
}

func TestIsOpenAt(t *testing.T) {
	w := standardWindows()

	tests := []struct {
		name  string
		start time.Time
		want  bool
	}{
		{"before morning", at(7, 59), false},
		{"morning start", at(8, 0), true},
		{"mid morning", at(9, 15), true},
		{"morning end", at(12, 0), true},
		{"lunch gap", at(12, 1), false},
		{"early afternoon", at(13, 0), false},
		{"evening start", at(14, 0), true},
		{"evening end", at(18, 0), true},
		{"after evening", at(18, 1), false},
		{"midnight", at(0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOpenAt(w, tt.start))
		})
	}
}

func TestIsOpenAt_IgnoresSeconds(t *testing.T) {
	w := standardWindows()

	assert.True(t, IsOpenAt(w, time.Date(2030, 1, 7, 18, 0, 59, 0, time.UTC)))
	assert.False(t, IsOpenAt(w, time.Date(2030, 1, 7, 7, 59, 59, 0, time.UTC)))
}

func TestIsOpenAt_ContiguousWindows(t *testing.T) {
	w := domain.OperatingWindows{
		MorningStart: domain.NewTimeOfDay(9, 0),
		MorningEnd:   domain.NewTimeOfDay(13, 0),
		EveningStart: domain.NewTimeOfDay(13, 0),
		EveningEnd:   domain.NewTimeOfDay(17, 0),
	}

	assert.True(t, IsOpenAt(w, at(13, 0)))
	assert.True(t, IsOpenAt(w, at(13, 1)))
}

func TestIsOpenAt_UsesLocationOfStart(t *testing.T) {
	almaty := time.FixedZone("UTC+5", 5*60*60)
	w := standardWindows()

	// 04:00 UTC is 09:00 at UTC+5.
	start := time.Date(2030, 1, 7, 4, 0, 0, 0, time.UTC)
	assert.False(t, IsOpenAt(w, start))
	assert.True(t, IsOpenAt(w, start.In(almaty)))
}
