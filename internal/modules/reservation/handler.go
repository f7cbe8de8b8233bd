package reservation

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"flashwash/internal/domain"
	"flashwash/internal/middleware"
	"flashwash/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects rg to be behind middleware.JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	customer := middleware.RequireRole(string(domain.RoleCustomer))
	provider := middleware.RequireRole(string(domain.RoleProvider))

	rg.POST("/reservations", customer, h.Submit)
	rg.GET("/reservations", h.ListAll)
	rg.GET("/reservations/mine", customer, h.ListMine)
	rg.GET("/offers/:id/my-request", customer, h.MyRequest)
	rg.GET("/offers/:id/live-starts", h.LiveStarts)
	rg.GET("/providers/me/reservations", provider, h.ListForProvider)

	rg.PATCH("/reservations/:id/accept", provider, h.Accept)
	rg.PATCH("/reservations/:id/cancel", h.Cancel)
}

func (h *Handler) Submit(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var body SubmitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	requesterID := actor.ID
	req, err := h.service.SubmitRequest(c.Request.Context(), body.OfferID, &requesterID, body.StartTime)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"reservation": toResponse(req)})
}

// ListAll handles GET /api/v1/reservations?limit=&offset=
func (h *Handler) ListAll(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	limit, ok := queryInt(c, "limit", DefaultPageSize)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}

	ls, err := h.service.ListAll(c.Request.Context(), actor, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": toListingResponses(ls)})
}

func (h *Handler) Accept(c *gin.Context) {
	h.transition(c, h.service.AcceptRequest)
}

func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, h.service.CancelRequest)
}

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, id int64, actor domain.Actor) (*domain.ReservationRequest, error)) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	req, err := op(c.Request.Context(), id, actor)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservation": toResponse(req)})
}

func (h *Handler) ListMine(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	rs, err := h.service.ListForRequester(c.Request.Context(), actor.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": toResponses(rs)})
}

func (h *Handler) ListForProvider(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	rs, err := h.service.ListForProvider(c.Request.Context(), actor.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reservations": toResponses(rs)})
}

func (h *Handler) LiveStarts(c *gin.Context) {
	offerID, ok := pathID(c)
	if !ok {
		return
	}
	starts, err := h.service.LiveStarts(c.Request.Context(), offerID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offer_id": offerID, "live_starts": starts})
}

func (h *Handler) MyRequest(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	offerID, ok := pathID(c)
	if !ok {
		return
	}
	exists, err := h.service.HasExistingRequest(c.Request.Context(), offerID, actor.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offer_id": offerID, "has_existing_request": exists})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, false
	}
	return v, true
}

func writeError(c *gin.Context, err error) {
	var rej *Rejection
	if errors.As(err, &rej) {
		switch {
		case errors.Is(err, ErrPastStartTime):
			response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "PAST_START_TIME", "Start time must be in the future", rej.Details())
		case errors.Is(err, ErrOutsideOperatingHours):
			response.ErrorWithDetails(c, http.StatusUnprocessableEntity, "OUTSIDE_OPERATING_HOURS", "Start time is outside the provider's operating hours", rej.Details())
		default:
			response.ErrorWithDetails(c, http.StatusConflict, "SLOT_CONFLICT", "The selected time is already taken", rej.Details())
		}
		return
	}

	switch {
	case errors.Is(err, ErrOfferNotFound):
		response.Error(c, http.StatusNotFound, "OFFER_NOT_FOUND", "Offer not found")
	case errors.Is(err, ErrProviderNotFound):
		response.Error(c, http.StatusNotFound, "PROVIDER_NOT_FOUND", "Provider not found")
	case errors.Is(err, ErrRequestNotFound):
		response.Error(c, http.StatusNotFound, "REQUEST_NOT_FOUND", "Reservation request not found")
	case errors.Is(err, ErrNotCancelable):
		response.Error(c, http.StatusConflict, "NOT_CANCELABLE", "Reservation request is no longer pending")
	case errors.Is(err, ErrNotAuthorized):
		response.Error(c, http.StatusForbidden, "NOT_AUTHORIZED", "You cannot act on this reservation request")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
