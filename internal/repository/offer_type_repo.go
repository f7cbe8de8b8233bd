package repository

import (
	"context"
	"errors"
	"strings"

	"flashwash/internal/domain"

	"gorm.io/gorm"
)

// ErrDuplicateTitle is returned when an offer type with the same title exists.
var ErrDuplicateTitle = errors.New("title already exists")

type OfferTypeRepository struct {
	db *gorm.DB
}

func NewOfferTypeRepository(db *gorm.DB) *OfferTypeRepository {
	return &OfferTypeRepository{db: db}
}

func toDomainOfferType(m offerTypeModel) domain.OfferType {
	return domain.OfferType{ID: m.ID, Title: m.Title, CreatedAt: m.CreatedAt}
}

func (r *OfferTypeRepository) GetOfferType(ctx context.Context, id int64) (*domain.OfferType, error) {
	var m offerTypeModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	t := toDomainOfferType(m)
	return &t, nil
}

// Create stores a new offer type. Titles are unique ignoring case.
func (r *OfferTypeRepository) Create(ctx context.Context, t *domain.OfferType) error {
	m := offerTypeModel{Title: strings.TrimSpace(t.Title)}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&offerTypeModel{}).Where("LOWER(title) = LOWER(?)", m.Title).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrDuplicateTitle
		}
		return tx.Create(&m).Error
	})
	if err != nil {
		if errors.Is(translateInsertError(err), ErrSlotTaken) {
			return ErrDuplicateTitle
		}
		return err
	}
	*t = toDomainOfferType(m)
	return nil
}

func (r *OfferTypeRepository) List(ctx context.Context) ([]domain.OfferType, error) {
	var rows []offerTypeModel
	if err := r.db.WithContext(ctx).Order("title").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.OfferType, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainOfferType(m))
	}
	return out, nil
}
