package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"flashwash/internal/domain"
	"flashwash/internal/middleware"
	"flashwash/internal/pkg/response"
	"flashwash/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/providers/:id", h.GetProvider)
	rg.GET("/providers/:id/offers", h.ListOffers)
	rg.GET("/offers", h.ListAllOffers)
	rg.GET("/offers/:id", h.GetOffer)
	rg.GET("/offer-types", h.ListOfferTypes)
}

// RegisterProviderRoutes expects rg to be behind middleware.JWTAuth.
func (h *Handler) RegisterProviderRoutes(rg *gin.RouterGroup) {
	provider := middleware.RequireRole(string(domain.RoleProvider))

	rg.PUT("/providers/me/hours", provider, h.UpdateHours)
	rg.POST("/offers", provider, h.CreateOffer)
	rg.PATCH("/offers/:id", provider, h.UpdateOffer)
	rg.DELETE("/offers/:id", provider, h.DeleteOffer)
	rg.POST("/offer-types", provider, h.CreateOfferType)
}

// GetProvider handles GET /api/v1/providers/:id
func (h *Handler) GetProvider(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.service.GetProvider(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"provider": p})
}

// ListOffers handles GET /api/v1/providers/:id/offers
func (h *Handler) ListOffers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	offers, err := h.service.ListOffers(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offers": offers})
}

// ListAllOffers handles GET /api/v1/offers?type_id=
func (h *Handler) ListAllOffers(c *gin.Context) {
	var typeID *int64
	if raw := c.Query("type_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid type_id")
			return
		}
		typeID = &id
	}

	offers, err := h.service.ListAllOffers(c.Request.Context(), typeID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offers": offers})
}

// ListOfferTypes handles GET /api/v1/offer-types
func (h *Handler) ListOfferTypes(c *gin.Context) {
	types, err := h.service.ListOfferTypes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offer_types": types})
}

// GetOffer handles GET /api/v1/offers/:id
func (h *Handler) GetOffer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := h.service.GetOffer(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offer": o})
}

// UpdateHours handles PUT /api/v1/providers/me/hours
func (h *Handler) UpdateHours(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req UpdateHoursRequest
	if !bindAndValidate(c, &req) {
		return
	}

	p, err := h.service.UpdateHours(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"provider": p})
}

// CreateOffer handles POST /api/v1/offers
func (h *Handler) CreateOffer(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreateOfferRequest
	if !bindAndValidate(c, &req) {
		return
	}

	o, err := h.service.CreateOffer(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"offer": o})
}

// UpdateOffer handles PATCH /api/v1/offers/:id
func (h *Handler) UpdateOffer(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateOfferRequest
	if !bindAndValidate(c, &req) {
		return
	}

	o, err := h.service.UpdateOffer(c.Request.Context(), actor, id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"offer": o})
}

// DeleteOffer handles DELETE /api/v1/offers/:id
func (h *Handler) DeleteOffer(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteOffer(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": id})
}

// CreateOfferType handles POST /api/v1/offer-types
func (h *Handler) CreateOfferType(c *gin.Context) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreateOfferTypeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	t, err := h.service.CreateOfferType(c.Request.Context(), actor, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"offer_type": t})
}

func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", errs)
		return false
	}
	return true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProviderNotFound):
		response.Error(c, http.StatusNotFound, "PROVIDER_NOT_FOUND", "Provider not found")
	case errors.Is(err, ErrOfferNotFound):
		response.Error(c, http.StatusNotFound, "OFFER_NOT_FOUND", "Offer not found")
	case errors.Is(err, ErrOfferTypeNotFound):
		response.Error(c, http.StatusNotFound, "OFFER_TYPE_NOT_FOUND", "Offer type not found")
	case errors.Is(err, ErrOfferTypeExists):
		response.Error(c, http.StatusConflict, "OFFER_TYPE_EXISTS", "Offer type already exists")
	case errors.Is(err, ErrOfferHasReservations):
		response.Error(c, http.StatusConflict, "OFFER_HAS_RESERVATIONS", "Offer has pending or accepted reservations")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "NOT_AUTHORIZED", "Access denied")
	case errors.Is(err, domain.ErrWindowOrder),
		errors.Is(err, ErrInvalidTimezone),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrDurationImmutable),
		errors.Is(err, domain.ErrInvalidTimeOfDay):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
