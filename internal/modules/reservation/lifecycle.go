package reservation

import "flashwash/internal/domain"

// Transition guards. The store re-checks the pending status when it writes.

// CheckAccept allows only the provider owning the offer to accept a pending request.
func CheckAccept(req *domain.ReservationRequest, offer *domain.Offer, actor domain.Actor) error {
	if req.Status == domain.ReservationCancelled {
		return ErrRequestNotFound
	}
	if !actor.IsProvider(offer.ProviderID) {
		return ErrNotAuthorized
	}
	if req.Status != domain.ReservationPending {
		return ErrNotCancelable
	}
	return nil
}

// CheckCancel allows the requester or the owning provider to cancel a pending request.
func CheckCancel(req *domain.ReservationRequest, offer *domain.Offer, actor domain.Actor) error {
	if req.Status == domain.ReservationCancelled {
		return ErrRequestNotFound
	}
	isRequester := req.RequesterID != nil && actor.IsCustomer(*req.RequesterID)
	if !isRequester && !actor.IsProvider(offer.ProviderID) {
		return ErrNotAuthorized
	}
	if req.Status != domain.ReservationPending {
		return ErrNotCancelable
	}
	return nil
}
