package reservation

import (
	"context"
	"time"

	"flashwash/internal/domain"
	"flashwash/internal/events"
)

type ReservationRepository interface {
	ListLive(ctx context.Context, offerID int64) ([]domain.ReservationRequest, error)
	Insert(ctx context.Context, r *domain.ReservationRequest) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.ReservationRequest, error)
	UpdateStatusIfPending(ctx context.Context, id int64, status domain.ReservationStatus, at time.Time) (bool, error)
	CancelIfPending(ctx context.Context, id int64, by domain.Actor, at time.Time) (bool, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]domain.ReservationRequest, error)
	ListByProvider(ctx context.Context, providerID int64) ([]domain.ReservationRequest, error)
	ListAll(ctx context.Context, limit, offset int) ([]domain.ReservationRequest, error)
	ExistsForRequester(ctx context.Context, offerID, requesterID int64) (bool, error)
}

type OfferLookup interface {
	GetOffer(ctx context.Context, id int64) (*domain.Offer, error)
}

type ProviderLookup interface {
	GetProvider(ctx context.Context, id int64) (*domain.Provider, error)
}

// AdmissionLocker serializes validate-then-insert per offer. Work under the
// lock runs on the returned context.
type AdmissionLocker interface {
	Acquire(ctx context.Context, key string) (context.Context, func(), error)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event) error
}
