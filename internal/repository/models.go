package repository

import (
	"time"

	"gorm.io/gorm"
)

type providerModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;size:200;not null"`
	Timezone     string    `gorm:"column:timezone;size:64"`
	MorningStart string    `gorm:"column:morning_start;size:5;not null"`
	MorningEnd   string    `gorm:"column:morning_end;size:5;not null"`
	EveningStart string    `gorm:"column:evening_start;size:5;not null"`
	EveningEnd   string    `gorm:"column:evening_end;size:5;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (providerModel) TableName() string { return "providers" }

type offerTypeModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	Title     string    `gorm:"column:title;size:100;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (offerTypeModel) TableName() string { return "offer_types" }

type offerModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	ProviderID      int64     `gorm:"column:provider_id;not null;index"`
	OfferTypeID     *int64    `gorm:"column:offer_type_id;index"`
	Title           string    `gorm:"column:title;size:200;not null"`
	Description     string    `gorm:"column:description;type:text"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
	// Deleted offers keep their row so reservation history still resolves.
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (offerModel) TableName() string { return "offers" }

type reservationModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	OfferID         int64     `gorm:"column:offer_id;not null;index:idx_reservation_offer_status,priority:1"`
	RequesterID     *int64    `gorm:"column:requester_id;index"`
	StartTime       time.Time `gorm:"column:start_time;not null"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null"`
	// Guard band [start - d/2, start + d/2]; two open bands overlap exactly
	// when their starts are closer than d.
	GuardFrom       time.Time  `gorm:"column:guard_from;not null"`
	GuardTo         time.Time  `gorm:"column:guard_to;not null"`
	Status          string     `gorm:"column:status;size:16;not null;index:idx_reservation_offer_status,priority:2"`
	CancelledByRole *string    `gorm:"column:cancelled_by_role;size:16"`
	CancelledByID   *int64     `gorm:"column:cancelled_by_id"`
	CancelledAt     *time.Time `gorm:"column:cancelled_at"`
	CreatedAt       time.Time  `gorm:"column:created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (reservationModel) TableName() string { return "reservation_requests" }

// Models returns the persistence models in migration order.
func Models() []any {
	return []any{&providerModel{}, &offerTypeModel{}, &offerModel{}, &reservationModel{}}
}
