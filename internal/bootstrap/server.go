package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/utopia-air/booking/api"
	"github.com/utopia-air/booking/config"
	"github.com/utopia-air/booking/internal/service/flights"
	"github.com/utopia-air/booking/internal/service/reservation"
)

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, flightSvc flights.FlightUseCase, reservationSvc reservation.ReservationUseCase) error {
	router := NewRouter(cfg, flightSvc, reservationSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires the gin engine: reservation routes under /booking,
// flight master data under /flights, swagger docs when a spec dir is
// configured.
func NewRouter(cfg *config.Config, flightSvc flights.FlightUseCase, reservationSvc reservation.ReservationUseCase) *gin.Engine {
	router := gin.Default()

	api.NewReservationHandler(reservationSvc).Register(router.Group("/booking"))
	api.NewFlightHandler(flightSvc).Register(router.Group("/flights"))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/spec", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/spec/booking.swagger.json"),
		)))
	}

	return router
}
