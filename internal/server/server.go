// Package server wires repositories, services and handlers into the HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/clock"
	"github.com/juju/loggo"
	"gorm.io/gorm"

	"flashwash/internal/config"
	"flashwash/internal/events"
	"flashwash/internal/lock"
	"flashwash/internal/middleware"
	"flashwash/internal/modules/catalog"
	"flashwash/internal/modules/reservation"
	jwtsvc "flashwash/internal/pkg/jwt"
	"flashwash/internal/pkg/response"
	"flashwash/internal/repository"
)

var logger = loggo.GetLogger("flashwash.server")

const shutdownTimeout = 10 * time.Second

type Deps struct {
	Config    *config.Config
	DB        *gorm.DB
	Clock     clock.Clock
	Locker    lock.Locker
	Publisher events.Publisher
}

type Server struct {
	Router       *gin.Engine
	JWT          *jwtsvc.Service
	Catalog      *catalog.Service
	Reservations *reservation.Service
}

func New(d Deps) *Server {
	if d.Clock == nil {
		d.Clock = clock.WallClock
	}
	if d.Locker == nil {
		d.Locker = lock.NewLocal()
	}
	if d.Publisher == nil {
		d.Publisher = events.Noop{}
	}

	providerRepo := repository.NewProviderRepository(d.DB)
	offerRepo := repository.NewOfferRepository(d.DB)
	offerTypeRepo := repository.NewOfferTypeRepository(d.DB)
	reservationRepo := repository.NewReservationRepository(d.DB)

	j := jwtsvc.New(d.Config.JWTSecret, d.Config.JWTTTL)

	catalogService := catalog.NewService(providerRepo, offerRepo, offerTypeRepo, reservationRepo, d.Locker)
	reservationService := reservation.NewService(
		reservationRepo,
		offerRepo,
		providerRepo,
		reservation.NewValidator(d.Clock, d.Config.Location),
		d.Locker,
		d.Publisher,
	)

	s := &Server{
		JWT:          j,
		Catalog:      catalogService,
		Reservations: reservationService,
	}
	s.Router = newRouter(d.Config, j, catalog.NewHandler(catalogService), reservation.NewHandler(reservationService))
	return s
}

func newRouter(cfg *config.Config, j *jwtsvc.Service, catalogHandler *catalog.Handler, reservationHandler *reservation.Handler) *gin.Engine {
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RequestLogger())

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			response.Success(c, http.StatusOK, gin.H{"status": "ok"})
		})

		// public
		catalogHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(j))
		{
			catalogHandler.RegisterProviderRoutes(protected)
			reservationHandler.RegisterRoutes(protected)
		}
	}

	return r
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
