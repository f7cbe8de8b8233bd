package repository

import (
	"context"
	"time"

	"flashwash/internal/domain"

	"gorm.io/gorm"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func toDomainReservation(m reservationModel) domain.ReservationRequest {
	r := domain.ReservationRequest{
		ID:              m.ID,
		OfferID:         m.OfferID,
		RequesterID:     m.RequesterID,
		StartTime:       m.StartTime.UTC(),
		Status:          domain.ReservationStatus(m.Status),
		DurationMinutes: m.DurationMinutes,
		CancelledAt:     m.CancelledAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.CancelledByRole != nil && m.CancelledByID != nil {
		r.CancelledBy = &domain.Actor{ID: *m.CancelledByID, Role: domain.UserRole(*m.CancelledByRole)}
	}
	return r
}

func toReservationModel(r *domain.ReservationRequest) reservationModel {
	start := r.StartTime.UTC()
	half := time.Duration(r.DurationMinutes) * time.Minute / 2

	return reservationModel{
		ID:              r.ID,
		OfferID:         r.OfferID,
		RequesterID:     r.RequesterID,
		StartTime:       start,
		DurationMinutes: r.DurationMinutes,
		GuardFrom:       start.Add(-half),
		GuardTo:         start.Add(half),
		Status:          string(r.Status),
		CancelledAt:     r.CancelledAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toDomainReservations(rows []reservationModel) []domain.ReservationRequest {
	out := make([]domain.ReservationRequest, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainReservation(m))
	}
	return out
}

func liveStatusValues() []string {
	live := domain.LiveStatuses()
	out := make([]string, 0, len(live))
	for _, s := range live {
		out = append(out, string(s))
	}
	return out
}

// ListLive returns the pending and accepted reservations of an offer ordered by start.
func (r *ReservationRepository) ListLive(ctx context.Context, offerID int64) ([]domain.ReservationRequest, error) {
	var rows []reservationModel
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Where("status IN ?", liveStatusValues()).
		Order("start_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainReservations(rows), nil
}

// Insert stores a new reservation and returns its ID. A conflicting insert
// rejected by a storage constraint yields ErrSlotTaken.
func (r *ReservationRepository) Insert(ctx context.Context, req *domain.ReservationRequest) (int64, error) {
	m := toReservationModel(req)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return 0, translateInsertError(err)
	}
	*req = toDomainReservation(m)
	return m.ID, nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.ReservationRequest, error) {
	var m reservationModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	out := toDomainReservation(m)
	return &out, nil
}

// UpdateStatusIfPending moves a pending reservation to status, stamping
// updated_at with at. It reports false when the row is missing or no longer
// pending.
func (r *ReservationRepository) UpdateStatusIfPending(ctx context.Context, id int64, status domain.ReservationStatus, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("id = ? AND status = ?", id, string(domain.ReservationPending)).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": at.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CancelIfPending marks a pending reservation cancelled and records who did it.
func (r *ReservationRepository) CancelIfPending(ctx context.Context, id int64, by domain.Actor, at time.Time) (bool, error) {
	at = at.UTC()
	res := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("id = ? AND status = ?", id, string(domain.ReservationPending)).
		Updates(map[string]any{
			"status":            string(domain.ReservationCancelled),
			"cancelled_by_role": string(by.Role),
			"cancelled_by_id":   by.ID,
			"cancelled_at":      at,
			"updated_at":        at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListAll pages through every reservation, newest first.
func (r *ReservationRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.ReservationRequest, error) {
	var rows []reservationModel
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainReservations(rows), nil
}

func (r *ReservationRepository) ListByRequester(ctx context.Context, requesterID int64) ([]domain.ReservationRequest, error) {
	var rows []reservationModel
	err := r.db.WithContext(ctx).
		Where("requester_id = ?", requesterID).
		Order("start_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainReservations(rows), nil
}

func (r *ReservationRepository) ListByProvider(ctx context.Context, providerID int64) ([]domain.ReservationRequest, error) {
	var rows []reservationModel
	err := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Select("reservation_requests.*").
		Joins("JOIN offers ON offers.id = reservation_requests.offer_id").
		Where("offers.provider_id = ?", providerID).
		Order("reservation_requests.start_time").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainReservations(rows), nil
}

// ExistsForRequester reports whether the user holds a live reservation on the offer.
func (r *ReservationRepository) ExistsForRequester(ctx context.Context, offerID, requesterID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&reservationModel{}).
		Where("offer_id = ? AND requester_id = ?", offerID, requesterID).
		Where("status IN ?", liveStatusValues()).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}
