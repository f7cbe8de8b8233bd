package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/juju/loggo"

	"flashwash/internal/domain"
	"flashwash/internal/events"
	"flashwash/internal/lock"
	"flashwash/internal/repository"
)

var logger = loggo.GetLogger("flashwash.reservation")

type Service struct {
	requests  ReservationRepository
	offers    OfferLookup
	providers ProviderLookup
	validator *Validator
	locker    AdmissionLocker
	events    EventPublisher
	clock     clock.Clock
}

func NewService(
	requests ReservationRepository,
	offers OfferLookup,
	providers ProviderLookup,
	validator *Validator,
	locker AdmissionLocker,
	publisher EventPublisher,
) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		requests:  requests,
		offers:    offers,
		providers: providers,
		validator: validator,
		locker:    locker,
		events:    publisher,
		clock:     validator.clock,
	}
}

// SubmitRequest admits a new pending reservation for offerID starting at
// start. requesterID may be nil for system-created requests. Rejections are
// returned as *Rejection; nothing is stored on rejection.
func (s *Service) SubmitRequest(ctx context.Context, offerID int64, requesterID *int64, start time.Time) (*domain.ReservationRequest, error) {
	req := &domain.ReservationRequest{
		OfferID:     offerID,
		RequesterID: requesterID,
		StartTime:   start.UTC(),
		Status:      domain.ReservationPending,
	}
	if err := s.admit(ctx, req); err != nil {
		return nil, err
	}

	logger.Infof("reservation submitted id=%d offer=%d start=%s", req.ID, req.OfferID, req.StartTime.Format(time.RFC3339))
	s.publish(ctx, events.ReservationSubmitted, req, nil)
	return req, nil
}

// admit validates req against the live reservations of its offer and inserts
// it. The offer's admission lock is held only for that span; the offer is
// read under it so a concurrent delete is observed.
func (s *Service) admit(ctx context.Context, req *domain.ReservationRequest) error {
	lockCtx, release, err := s.locker.Acquire(ctx, lock.OfferKey(req.OfferID))
	if err != nil {
		return fmt.Errorf("admission lock: %w", err)
	}
	defer release()

	offer, err := s.getOffer(lockCtx, req.OfferID)
	if err != nil {
		return err
	}
	provider, err := s.providers.GetProvider(lockCtx, offer.ProviderID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProviderNotFound
	}
	if err != nil {
		return fmt.Errorf("provider %d of offer %d: %w", offer.ProviderID, offer.ID, err)
	}

	live, err := s.requests.ListLive(lockCtx, offer.ID)
	if err != nil {
		return err
	}
	if err := s.validator.Validate(req.StartTime, offer, provider, live); err != nil {
		logger.Debugf("rejected offer=%d start=%s: %v", offer.ID, req.StartTime.Format(time.RFC3339), err)
		return err
	}

	req.DurationMinutes = offer.DurationMinutes
	if _, err := s.requests.Insert(lockCtx, req); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return &Rejection{Reason: ErrSlotConflict, Start: req.StartTime}
		}
		return err
	}
	return nil
}

// AcceptRequest moves a pending request to accepted on behalf of the
// provider owning its offer.
func (s *Service) AcceptRequest(ctx context.Context, requestID int64, actor domain.Actor) (*domain.ReservationRequest, error) {
	req, offer, err := s.loadForTransition(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := CheckAccept(req, offer, actor); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	ok, err := s.requests.UpdateStatusIfPending(ctx, requestID, domain.ReservationAccepted, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.failedGuard(ctx, requestID)
	}

	req.Status = domain.ReservationAccepted
	req.UpdatedAt = now
	logger.Infof("reservation accepted id=%d provider=%d", req.ID, actor.ID)
	s.publish(ctx, events.ReservationAccepted, req, &actor)
	return req, nil
}

// CancelRequest cancels a pending request on behalf of its requester or the
// provider owning its offer. The record is kept with status cancelled.
func (s *Service) CancelRequest(ctx context.Context, requestID int64, actor domain.Actor) (*domain.ReservationRequest, error) {
	req, offer, err := s.loadForTransition(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := CheckCancel(req, offer, actor); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	ok, err := s.requests.CancelIfPending(ctx, requestID, actor, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.failedGuard(ctx, requestID)
	}

	req.Status = domain.ReservationCancelled
	req.CancelledBy = &actor
	req.CancelledAt = &now
	req.UpdatedAt = now
	logger.Infof("reservation cancelled id=%d by=%s:%d", req.ID, actor.Role, actor.ID)
	s.publish(ctx, events.ReservationCancelled, req, &actor)
	return req, nil
}

func (s *Service) ListForRequester(ctx context.Context, requesterID int64) ([]domain.ReservationRequest, error) {
	return s.requests.ListByRequester(ctx, requesterID)
}

func (s *Service) ListForProvider(ctx context.Context, providerID int64) ([]domain.ReservationRequest, error) {
	return s.requests.ListByProvider(ctx, providerID)
}

// Listing is a reservation together with its offer. Offer is nil once the
// offer has been deleted.
type Listing struct {
	Request domain.ReservationRequest
	Offer   *domain.Offer
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// ListAll pages through every reservation, newest first. The requester is
// shown only to the requester and to the provider owning the offer.
func (s *Service) ListAll(ctx context.Context, actor domain.Actor, limit, offset int) ([]Listing, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	limit = min(limit, MaxPageSize)
	offset = max(offset, 0)

	rs, err := s.requests.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	offers := map[int64]*domain.Offer{}
	out := make([]Listing, 0, len(rs))
	for _, r := range rs {
		offer, seen := offers[r.OfferID]
		if !seen {
			offer, err = s.offers.GetOffer(ctx, r.OfferID)
			if errors.Is(err, repository.ErrNotFound) {
				offer, err = nil, nil
			}
			if err != nil {
				return nil, err
			}
			offers[r.OfferID] = offer
		}

		owner := offer != nil && actor.IsProvider(offer.ProviderID)
		requester := r.RequesterID != nil && actor.IsCustomer(*r.RequesterID)
		if !owner && !requester {
			r.RequesterID = nil
		}
		out = append(out, Listing{Request: r, Offer: offer})
	}
	return out, nil
}

// LiveStarts returns the occupied start times of an offer.
func (s *Service) LiveStarts(ctx context.Context, offerID int64) ([]time.Time, error) {
	if _, err := s.getOffer(ctx, offerID); err != nil {
		return nil, err
	}
	live, err := s.requests.ListLive(ctx, offerID)
	if err != nil {
		return nil, err
	}
	return LiveStarts(live), nil
}

// HasExistingRequest reports whether the user already holds a live request on the offer.
func (s *Service) HasExistingRequest(ctx context.Context, offerID, requesterID int64) (bool, error) {
	if _, err := s.getOffer(ctx, offerID); err != nil {
		return false, err
	}
	return s.requests.ExistsForRequester(ctx, offerID, requesterID)
}

func (s *Service) getOffer(ctx context.Context, offerID int64) (*domain.Offer, error) {
	offer, err := s.offers.GetOffer(ctx, offerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOfferNotFound
	}
	if err != nil {
		return nil, err
	}
	return offer, nil
}

func (s *Service) loadForTransition(ctx context.Context, requestID int64) (*domain.ReservationRequest, *domain.Offer, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if req.Status == domain.ReservationCancelled {
		return nil, nil, ErrRequestNotFound
	}

	offer, err := s.offers.GetOffer(ctx, req.OfferID)
	if err != nil {
		return nil, nil, fmt.Errorf("offer %d of request %d: %w", req.OfferID, req.ID, err)
	}
	return req, offer, nil
}

// failedGuard classifies a conditional write that matched no pending row.
func (s *Service) failedGuard(ctx context.Context, requestID int64) error {
	current, err := s.requests.GetByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrRequestNotFound
	}
	if err != nil {
		return err
	}
	if current.Status == domain.ReservationCancelled {
		return ErrRequestNotFound
	}
	return ErrNotCancelable
}

func (s *Service) publish(ctx context.Context, typ events.Type, req *domain.ReservationRequest, actor *domain.Actor) {
	ev := events.Event{
		Type:          typ,
		ReservationID: req.ID,
		OfferID:       req.OfferID,
		RequesterID:   req.RequesterID,
		StartTime:     req.StartTime,
		Status:        string(req.Status),
		OccurredAt:    s.clock.Now().UTC(),
	}
	if actor != nil {
		ev.ActorRole = string(actor.Role)
		ev.ActorID = actor.ID
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		logger.Warningf("publish %s for reservation %d: %v", typ, req.ID, err)
	}
}
