package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flashwash/internal/config"
	"flashwash/internal/domain"
	"flashwash/internal/modules/catalog"
	"flashwash/internal/testutil"
)

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

type apiEnv struct {
	t        *testing.T
	srv      *Server
	provider *domain.Provider
	owner    string
	customer string
	stranger string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AppEnv:    "test",
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
		Location:  time.UTC,
	}
	srv := New(Deps{
		Config: cfg,
		DB:     testutil.NewDB(t),
		Clock:  testclock.NewClock(time.Date(2030, 1, 6, 20, 0, 0, 0, time.UTC)),
	})

	p, err := srv.Catalog.CreateProvider(context.Background(), catalog.CreateProviderRequest{
		Name:     "Wash",
		Timezone: "UTC",
		WindowsRequest: catalog.WindowsRequest{
			MorningStart: "08:00",
			MorningEnd:   "12:00",
			EveningStart: "14:00",
			EveningEnd:   "18:00",
		},
	})
	require.NoError(t, err)

	token := func(a domain.Actor) string {
		s, err := srv.JWT.GenerateToken(a)
		require.NoError(t, err)
		return s
	}

	return &apiEnv{
		t:        t,
		srv:      srv,
		provider: p,
		owner:    token(domain.Actor{ID: p.ID, Role: domain.RoleProvider}),
		customer: token(domain.Actor{ID: 501, Role: domain.RoleCustomer}),
		stranger: token(domain.Actor{ID: 502, Role: domain.RoleCustomer}),
	}
}

func (e *apiEnv) do(method, path, token string, body any) (int, apiEnvelope) {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.srv.Router.ServeHTTP(rr, req)

	var env apiEnvelope
	require.NoError(e.t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr.Code, env
}

func (e *apiEnv) createOffer(duration int) int64 {
	e.t.Helper()
	code, env := e.do(http.MethodPost, "/api/v1/offers", e.owner, gin.H{
		"title":            "Full wash",
		"duration_minutes": duration,
	})
	require.Equal(e.t, http.StatusCreated, code)

	var data struct {
		Offer domain.Offer `json:"offer"`
	}
	require.NoError(e.t, json.Unmarshal(env.Data, &data))
	return data.Offer.ID
}

func (e *apiEnv) submit(token string, offerID int64, start string) (int, apiEnvelope, int64) {
	e.t.Helper()
	code, env := e.do(http.MethodPost, "/api/v1/reservations", token, gin.H{
		"offer_id":   offerID,
		"start_time": start,
	})

	var data struct {
		Reservation struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"reservation"`
	}
	if code == http.StatusCreated {
		require.NoError(e.t, json.Unmarshal(env.Data, &data))
	}
	return code, env, data.Reservation.ID
}

func TestHealth(t *testing.T) {
	e := newAPIEnv(t)

	code, env := e.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestReservationFlow(t *testing.T) {
	e := newAPIEnv(t)
	offerID := e.createOffer(30)

	code, _, first := e.submit(e.customer, offerID, "2030-01-07T09:00:00Z")
	require.Equal(t, http.StatusCreated, code)

	code, env, _ := e.submit(e.stranger, offerID, "2030-01-07T09:15:00Z")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "SLOT_CONFLICT", env.Error.Code)
	var details map[string]any
	require.NoError(t, json.Unmarshal(env.Error.Details, &details))
	assert.Equal(t, "2030-01-07T09:00:00Z", details["conflicts_with"])

	code, _, _ = e.submit(e.stranger, offerID, "2030-01-07T09:45:00Z")
	assert.Equal(t, http.StatusCreated, code)

	code, env, _ = e.submit(e.stranger, offerID, "2030-01-07T13:00:00Z")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "OUTSIDE_OPERATING_HOURS", env.Error.Code)

	code, env, _ = e.submit(e.stranger, offerID, "2030-01-06T19:59:59Z")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "PAST_START_TIME", env.Error.Code)

	code, env = e.do(http.MethodPatch, fmt.Sprintf("/api/v1/reservations/%d/accept", first), e.customer, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	code, _ = e.do(http.MethodPatch, fmt.Sprintf("/api/v1/reservations/%d/accept", first), e.owner, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = e.do(http.MethodPatch, fmt.Sprintf("/api/v1/reservations/%d/cancel", first), e.customer, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NOT_CANCELABLE", env.Error.Code)

	code, env = e.do(http.MethodGet, fmt.Sprintf("/api/v1/offers/%d/live-starts", offerID), e.customer, nil)
	assert.Equal(t, http.StatusOK, code)
	var starts struct {
		LiveStarts []time.Time `json:"live_starts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &starts))
	assert.Len(t, starts.LiveStarts, 2)

	code, env = e.do(http.MethodGet, "/api/v1/providers/me/reservations", e.owner, nil)
	assert.Equal(t, http.StatusOK, code)
	var listed struct {
		Reservations []json.RawMessage `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed.Reservations, 2)
}

func TestCancelTwice(t *testing.T) {
	e := newAPIEnv(t)
	offerID := e.createOffer(30)

	code, _, id := e.submit(e.customer, offerID, "2030-01-07T15:00:00Z")
	require.Equal(t, http.StatusCreated, code)

	path := fmt.Sprintf("/api/v1/reservations/%d/cancel", id)

	code, env := e.do(http.MethodPatch, path, e.stranger, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "NOT_AUTHORIZED", env.Error.Code)

	code, _ = e.do(http.MethodPatch, path, e.customer, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = e.do(http.MethodPatch, path, e.customer, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "REQUEST_NOT_FOUND", env.Error.Code)
}

func TestMyRequest(t *testing.T) {
	e := newAPIEnv(t)
	offerID := e.createOffer(30)
	path := fmt.Sprintf("/api/v1/offers/%d/my-request", offerID)

	_, env := e.do(http.MethodGet, path, e.customer, nil)
	assert.JSONEq(t, fmt.Sprintf(`{"offer_id":%d,"has_existing_request":false}`, offerID), string(env.Data))

	code, _, _ := e.submit(e.customer, offerID, "2030-01-07T10:00:00Z")
	require.Equal(t, http.StatusCreated, code)

	_, env = e.do(http.MethodGet, path, e.customer, nil)
	assert.JSONEq(t, fmt.Sprintf(`{"offer_id":%d,"has_existing_request":true}`, offerID), string(env.Data))

	code, env = e.do(http.MethodGet, "/api/v1/reservations/mine", e.customer, nil)
	assert.Equal(t, http.StatusOK, code)
	var listed struct {
		Reservations []json.RawMessage `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed.Reservations, 1)
}

func TestSubmitValidation(t *testing.T) {
	e := newAPIEnv(t)

	code, env := e.do(http.MethodPost, "/api/v1/reservations", e.customer, gin.H{"offer_id": 1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env, _ = e.submit(e.customer, 999, "2030-01-07T10:00:00Z")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "OFFER_NOT_FOUND", env.Error.Code)

	code, env = e.do(http.MethodPost, "/api/v1/reservations", "", gin.H{"offer_id": 1})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_HEADER_MISSING", env.Error.Code)

	code, env = e.do(http.MethodPost, "/api/v1/reservations", e.owner, gin.H{"offer_id": 1, "start_time": "2030-01-07T10:00:00Z"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func TestCatalogRoutes(t *testing.T) {
	e := newAPIEnv(t)
	offerID := e.createOffer(45)

	code, env := e.do(http.MethodGet, fmt.Sprintf("/api/v1/offers/%d", offerID), "", nil)
	assert.Equal(t, http.StatusOK, code)
	var got struct {
		Offer domain.Offer `json:"offer"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 45, got.Offer.DurationMinutes)

	code, _ = e.do(http.MethodGet, fmt.Sprintf("/api/v1/providers/%d/offers", e.provider.ID), "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = e.do(http.MethodGet, "/api/v1/offers/999", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "OFFER_NOT_FOUND", env.Error.Code)

	code, env = e.do(http.MethodPost, "/api/v1/offers", e.owner, gin.H{"title": "Too long", "duration_minutes": 1441})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = e.do(http.MethodPost, "/api/v1/offers", e.owner, gin.H{"title": "No duration"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestUpdateHours(t *testing.T) {
	e := newAPIEnv(t)
	offerID := e.createOffer(30)

	code, env := e.do(http.MethodPut, "/api/v1/providers/me/hours", e.owner, gin.H{
		"morning_start": "12:00",
		"morning_end":   "08:00",
		"evening_start": "14:00",
		"evening_end":   "18:00",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, _ = e.do(http.MethodPut, "/api/v1/providers/me/hours", e.owner, gin.H{
		"morning_start": "08:00",
		"morning_end":   "13:00",
		"evening_start": "14:00",
		"evening_end":   "18:00",
	})
	require.Equal(t, http.StatusOK, code)

	// 13:00 is inside the widened morning window now.
	code, _, _ = e.submit(e.customer, offerID, "2030-01-07T13:00:00Z")
	assert.Equal(t, http.StatusCreated, code)

	code, _ = e.do(http.MethodPut, "/api/v1/providers/me/hours", e.customer, gin.H{})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestUnknownRoute(t *testing.T) {
	e := newAPIEnv(t)

	code, env := e.do(http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestOfferManagementRoutes(t *testing.T) {
	e := newAPIEnv(t)

	code, env := e.do(http.MethodPost, "/api/v1/offer-types", e.owner, gin.H{"title": "Exterior"})
	require.Equal(t, http.StatusCreated, code)
	var created struct {
		OfferType domain.OfferType `json:"offer_type"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, env = e.do(http.MethodPost, "/api/v1/offer-types", e.owner, gin.H{"title": "exterior"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "OFFER_TYPE_EXISTS", env.Error.Code)

	code, _ = e.do(http.MethodPost, "/api/v1/offer-types", e.customer, gin.H{"title": "Interior"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = e.do(http.MethodGet, "/api/v1/offer-types", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"Exterior"`)

	code, _ = e.do(http.MethodPost, "/api/v1/offers", e.owner, gin.H{
		"title":            "Foam",
		"duration_minutes": 30,
		"offer_type_id":    created.OfferType.ID,
	})
	require.Equal(t, http.StatusCreated, code)
	untyped := e.createOffer(30)

	var listed struct {
		Offers []domain.Offer `json:"offers"`
	}
	code, env = e.do(http.MethodGet, "/api/v1/offers", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed.Offers, 2)

	code, env = e.do(http.MethodGet, fmt.Sprintf("/api/v1/offers?type_id=%d", created.OfferType.ID), "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed.Offers, 1)
	assert.Equal(t, "Foam", listed.Offers[0].Title)

	code, env = e.do(http.MethodGet, "/api/v1/offers?type_id=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)

	path := fmt.Sprintf("/api/v1/offers/%d", untyped)

	code, env = e.do(http.MethodPatch, path, e.owner, gin.H{"title": "Full wash plus", "description": "wax"})
	require.Equal(t, http.StatusOK, code)
	var updated struct {
		Offer domain.Offer `json:"offer"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Full wash plus", updated.Offer.Title)
	assert.Equal(t, 30, updated.Offer.DurationMinutes)

	code, env = e.do(http.MethodPatch, path, e.owner, gin.H{"duration_minutes": 60})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, _, id := e.submit(e.customer, untyped, "2030-01-07T09:00:00Z")
	require.Equal(t, http.StatusCreated, code)

	code, env = e.do(http.MethodDelete, path, e.owner, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "OFFER_HAS_RESERVATIONS", env.Error.Code)

	code, _ = e.do(http.MethodPatch, fmt.Sprintf("/api/v1/reservations/%d/cancel", id), e.customer, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = e.do(http.MethodDelete, path, e.owner, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = e.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "OFFER_NOT_FOUND", env.Error.Code)

	code, env, _ = e.submit(e.customer, untyped, "2030-01-07T10:00:00Z")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "OFFER_NOT_FOUND", env.Error.Code)
}

func TestAllRequests(t *testing.T) {
	e := newAPIEnv(t)
	offerID := e.createOffer(30)

	code, _, mine := e.submit(e.customer, offerID, "2030-01-07T09:00:00Z")
	require.Equal(t, http.StatusCreated, code)
	code, _, theirs := e.submit(e.stranger, offerID, "2030-01-07T10:00:00Z")
	require.Equal(t, http.StatusCreated, code)

	type row struct {
		ID          int64         `json:"id"`
		RequesterID *int64        `json:"requester_id"`
		Offer       *domain.Offer `json:"offer"`
	}
	list := func(token, query string) []row {
		t.Helper()
		code, env := e.do(http.MethodGet, "/api/v1/reservations"+query, token, nil)
		require.Equal(t, http.StatusOK, code)
		var data struct {
			Reservations []row `json:"reservations"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		return data.Reservations
	}

	rows := list(e.customer, "")
	require.Len(t, rows, 2)
	assert.Equal(t, theirs, rows[0].ID)
	assert.Nil(t, rows[0].RequesterID)
	assert.Equal(t, mine, rows[1].ID)
	require.NotNil(t, rows[1].RequesterID)
	assert.Equal(t, int64(501), *rows[1].RequesterID)
	require.NotNil(t, rows[1].Offer)
	assert.Equal(t, offerID, rows[1].Offer.ID)

	for _, r := range list(e.owner, "") {
		assert.NotNil(t, r.RequesterID)
	}

	rows = list(e.customer, "?limit=1&offset=1")
	require.Len(t, rows, 1)
	assert.Equal(t, mine, rows[0].ID)

	code, env := e.do(http.MethodGet, "/api/v1/reservations?limit=-1", e.customer, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, _ = e.do(http.MethodGet, "/api/v1/reservations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
