package repository

import (
	"context"

	"flashwash/internal/domain"

	"gorm.io/gorm"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func toDomainOffer(m offerModel) *domain.Offer {
	return &domain.Offer{
		ID:              m.ID,
		ProviderID:      m.ProviderID,
		OfferTypeID:     m.OfferTypeID,
		Title:           m.Title,
		Description:     m.Description,
		DurationMinutes: m.DurationMinutes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func (r *OfferRepository) GetOffer(ctx context.Context, id int64) (*domain.Offer, error) {
	var m offerModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return toDomainOffer(m), nil
}

func (r *OfferRepository) Create(ctx context.Context, o *domain.Offer) error {
	m := offerModel{
		ProviderID:      o.ProviderID,
		OfferTypeID:     o.OfferTypeID,
		Title:           o.Title,
		Description:     o.Description,
		DurationMinutes: o.DurationMinutes,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*o = *toDomainOffer(m)
	return nil
}

func (r *OfferRepository) ListByProvider(ctx context.Context, providerID int64) ([]domain.Offer, error) {
	return r.list(r.db.WithContext(ctx).Where("provider_id = ?", providerID))
}

// List returns every offer, or only those of one type when typeID is set.
func (r *OfferRepository) List(ctx context.Context, typeID *int64) ([]domain.Offer, error) {
	q := r.db.WithContext(ctx)
	if typeID != nil {
		q = q.Where("offer_type_id = ?", *typeID)
	}
	return r.list(q)
}

func (r *OfferRepository) list(q *gorm.DB) ([]domain.Offer, error) {
	var rows []offerModel
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Offer, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainOffer(m))
	}
	return out, nil
}

// UpdateDetails rewrites the descriptive fields of an offer. Duration and
// provider never change after creation.
func (r *OfferRepository) UpdateDetails(ctx context.Context, id int64, title, description string, typeID *int64) (*domain.Offer, error) {
	res := r.db.WithContext(ctx).
		Model(&offerModel{ID: id}).
		Updates(map[string]any{
			"title":         title,
			"description":   description,
			"offer_type_id": typeID,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetOffer(ctx, id)
}

// Delete soft-deletes an offer; it no longer resolves through GetOffer.
func (r *OfferRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&offerModel{ID: id})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
