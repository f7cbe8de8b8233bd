package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juju/loggo"

	"flashwash/internal/domain"
	"flashwash/internal/lock"
	"flashwash/internal/repository"
)

var logger = loggo.GetLogger("flashwash.catalog")

type ProviderStore interface {
	GetProvider(ctx context.Context, id int64) (*domain.Provider, error)
	Create(ctx context.Context, p *domain.Provider) error
	UpdateWindows(ctx context.Context, id int64, w domain.OperatingWindows, timezone string) (*domain.Provider, error)
}

type OfferStore interface {
	GetOffer(ctx context.Context, id int64) (*domain.Offer, error)
	Create(ctx context.Context, o *domain.Offer) error
	ListByProvider(ctx context.Context, providerID int64) ([]domain.Offer, error)
	List(ctx context.Context, typeID *int64) ([]domain.Offer, error)
	UpdateDetails(ctx context.Context, id int64, title, description string, typeID *int64) (*domain.Offer, error)
	Delete(ctx context.Context, id int64) error
}

type OfferTypeStore interface {
	GetOfferType(ctx context.Context, id int64) (*domain.OfferType, error)
	Create(ctx context.Context, t *domain.OfferType) error
	List(ctx context.Context) ([]domain.OfferType, error)
}

// LiveReservations reports the pending and accepted reservations of an offer.
type LiveReservations interface {
	ListLive(ctx context.Context, offerID int64) ([]domain.ReservationRequest, error)
}

type Service struct {
	providers ProviderStore
	offers    OfferStore
	types     OfferTypeStore
	live      LiveReservations
	locker    lock.Locker
}

// NewService wires the catalog. locker must be the one reservation admission
// uses so offer deletion cannot interleave with a submission.
func NewService(providers ProviderStore, offers OfferStore, types OfferTypeStore, live LiveReservations, locker lock.Locker) *Service {
	return &Service{providers: providers, offers: offers, types: types, live: live, locker: locker}
}

/* ---------- PROVIDER ---------- */

func (s *Service) CreateProvider(ctx context.Context, req CreateProviderRequest) (*domain.Provider, error) {
	w, err := req.WindowsRequest.toDomain()
	if err != nil {
		return nil, err
	}
	if err := checkTimezone(req.Timezone); err != nil {
		return nil, err
	}

	p := &domain.Provider{Name: req.Name, Timezone: req.Timezone, Windows: w}
	if err := s.providers.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.Infof("provider created id=%d name=%q", p.ID, p.Name)
	return p, nil
}

func (s *Service) GetProvider(ctx context.Context, id int64) (*domain.Provider, error) {
	p, err := s.providers.GetProvider(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProviderNotFound
	}
	return p, err
}

// UpdateHours replaces the operating windows of the provider the actor acts for.
func (s *Service) UpdateHours(ctx context.Context, actor domain.Actor, req UpdateHoursRequest) (*domain.Provider, error) {
	if actor.Role != domain.RoleProvider || actor.ID <= 0 {
		return nil, ErrForbidden
	}
	w, err := req.WindowsRequest.toDomain()
	if err != nil {
		return nil, err
	}
	if err := checkTimezone(req.Timezone); err != nil {
		return nil, err
	}

	p, err := s.providers.UpdateWindows(ctx, actor.ID, w, req.Timezone)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProviderNotFound
	}
	if err != nil {
		return nil, err
	}
	logger.Infof("provider hours updated id=%d windows=%s-%s/%s-%s",
		p.ID, w.MorningStart, w.MorningEnd, w.EveningStart, w.EveningEnd)
	return p, nil
}

/* ---------- OFFER ---------- */

// CreateOffer adds an offer to the provider the actor acts for.
func (s *Service) CreateOffer(ctx context.Context, actor domain.Actor, req CreateOfferRequest) (*domain.Offer, error) {
	if actor.Role != domain.RoleProvider || actor.ID <= 0 {
		return nil, ErrForbidden
	}
	if req.DurationMinutes == nil || *req.DurationMinutes < 0 || *req.DurationMinutes > 24*60 {
		return nil, ErrInvalidDuration
	}
	if _, err := s.GetProvider(ctx, actor.ID); err != nil {
		return nil, err
	}
	if err := s.checkOfferType(ctx, req.OfferTypeID); err != nil {
		return nil, err
	}

	o := &domain.Offer{
		ProviderID:      actor.ID,
		OfferTypeID:     req.OfferTypeID,
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: *req.DurationMinutes,
	}
	if err := s.offers.Create(ctx, o); err != nil {
		return nil, err
	}
	logger.Infof("offer created id=%d provider=%d duration=%dm", o.ID, o.ProviderID, o.DurationMinutes)
	return o, nil
}

func (s *Service) GetOffer(ctx context.Context, id int64) (*domain.Offer, error) {
	o, err := s.offers.GetOffer(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOfferNotFound
	}
	return o, err
}

func (s *Service) ListOffers(ctx context.Context, providerID int64) ([]domain.Offer, error) {
	if _, err := s.GetProvider(ctx, providerID); err != nil {
		return nil, err
	}
	return s.offers.ListByProvider(ctx, providerID)
}

// ListAllOffers lists offers across providers, optionally of one type.
func (s *Service) ListAllOffers(ctx context.Context, typeID *int64) ([]domain.Offer, error) {
	if err := s.checkOfferType(ctx, typeID); err != nil {
		return nil, err
	}
	return s.offers.List(ctx, typeID)
}

// UpdateOffer changes the title, description and type of an offer the actor
// owns. The duration is fixed at creation.
func (s *Service) UpdateOffer(ctx context.Context, actor domain.Actor, id int64, req UpdateOfferRequest) (*domain.Offer, error) {
	if req.DurationMinutes != nil {
		return nil, ErrDurationImmutable
	}
	o, err := s.ownedOffer(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	title, description, typeID := o.Title, o.Description, o.OfferTypeID
	if req.Title != nil {
		title = *req.Title
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.OfferTypeID != nil {
		if err := s.checkOfferType(ctx, req.OfferTypeID); err != nil {
			return nil, err
		}
		typeID = req.OfferTypeID
	}

	updated, err := s.offers.UpdateDetails(ctx, id, title, description, typeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	logger.Infof("offer updated id=%d provider=%d", updated.ID, updated.ProviderID)
	return updated, nil
}

// DeleteOffer removes an offer the actor owns. It is refused while the offer
// has pending or accepted reservations.
func (s *Service) DeleteOffer(ctx context.Context, actor domain.Actor, id int64) error {
	if _, err := s.ownedOffer(ctx, actor, id); err != nil {
		return err
	}

	lockCtx, release, err := s.locker.Acquire(ctx, lock.OfferKey(id))
	if err != nil {
		return fmt.Errorf("offer lock: %w", err)
	}
	defer release()

	live, err := s.live.ListLive(lockCtx, id)
	if err != nil {
		return err
	}
	if len(live) > 0 {
		return fmt.Errorf("%w: %d live", ErrOfferHasReservations, len(live))
	}

	err = s.offers.Delete(lockCtx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOfferNotFound
	}
	if err != nil {
		return err
	}
	logger.Infof("offer deleted id=%d provider=%d", id, actor.ID)
	return nil
}

func (s *Service) ownedOffer(ctx context.Context, actor domain.Actor, id int64) (*domain.Offer, error) {
	if actor.Role != domain.RoleProvider || actor.ID <= 0 {
		return nil, ErrForbidden
	}
	o, err := s.GetOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.ProviderID != actor.ID {
		return nil, ErrForbidden
	}
	return o, nil
}

/* ---------- OFFER TYPE ---------- */

func (s *Service) CreateOfferType(ctx context.Context, actor domain.Actor, req CreateOfferTypeRequest) (*domain.OfferType, error) {
	if actor.Role != domain.RoleProvider || actor.ID <= 0 {
		return nil, ErrForbidden
	}
	t := &domain.OfferType{Title: req.Title}
	err := s.types.Create(ctx, t)
	if errors.Is(err, repository.ErrDuplicateTitle) {
		return nil, fmt.Errorf("%w: %q", ErrOfferTypeExists, req.Title)
	}
	if err != nil {
		return nil, err
	}
	logger.Infof("offer type created id=%d title=%q", t.ID, t.Title)
	return t, nil
}

func (s *Service) ListOfferTypes(ctx context.Context) ([]domain.OfferType, error) {
	return s.types.List(ctx)
}

func (s *Service) checkOfferType(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := s.types.GetOfferType(ctx, *id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrOfferTypeNotFound
	}
	return err
}

func checkTimezone(name string) error {
	if name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return nil
}
