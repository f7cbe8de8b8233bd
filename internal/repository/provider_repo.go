package repository

import (
	"context"
	"fmt"

	"flashwash/internal/domain"

	"gorm.io/gorm"
)

type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func toDomainProvider(m providerModel) (*domain.Provider, error) {
	var w domain.OperatingWindows
	fields := []struct {
		raw string
		dst *domain.TimeOfDay
	}{
		{m.MorningStart, &w.MorningStart},
		{m.MorningEnd, &w.MorningEnd},
		{m.EveningStart, &w.EveningStart},
		{m.EveningEnd, &w.EveningEnd},
	}
	for _, f := range fields {
		v, err := domain.ParseTimeOfDay(f.raw)
		if err != nil {
			return nil, fmt.Errorf("provider %d: %w", m.ID, err)
		}
		*f.dst = v
	}

	return &domain.Provider{
		ID:        m.ID,
		Name:      m.Name,
		Timezone:  m.Timezone,
		Windows:   w,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func windowColumns(w domain.OperatingWindows) map[string]any {
	return map[string]any{
		"morning_start": w.MorningStart.String(),
		"morning_end":   w.MorningEnd.String(),
		"evening_start": w.EveningStart.String(),
		"evening_end":   w.EveningEnd.String(),
	}
}

func (r *ProviderRepository) GetProvider(ctx context.Context, id int64) (*domain.Provider, error) {
	var m providerModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return toDomainProvider(m)
}

func (r *ProviderRepository) Create(ctx context.Context, p *domain.Provider) error {
	m := providerModel{
		Name:         p.Name,
		Timezone:     p.Timezone,
		MorningStart: p.Windows.MorningStart.String(),
		MorningEnd:   p.Windows.MorningEnd.String(),
		EveningStart: p.Windows.EveningStart.String(),
		EveningEnd:   p.Windows.EveningEnd.String(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	out, err := toDomainProvider(m)
	if err != nil {
		return err
	}
	*p = *out
	return nil
}

// UpdateWindows replaces the operating windows and, when timezone is not
// empty, the provider timezone.
func (r *ProviderRepository) UpdateWindows(ctx context.Context, id int64, w domain.OperatingWindows, timezone string) (*domain.Provider, error) {
	cols := windowColumns(w)
	if timezone != "" {
		cols["timezone"] = timezone
	}
	res := r.db.WithContext(ctx).
		Model(&providerModel{}).
		Where("id = ?", id).
		Updates(cols)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetProvider(ctx, id)
}
