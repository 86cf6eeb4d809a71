package bookingapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"booking-api/internal/app/availability"
	"booking-api/internal/app/booking"
	"booking-api/internal/app/web"
	"booking-api/internal/shared/config"
	"booking-api/internal/shared/logger"
	pg "booking-api/internal/shared/postgres"
	"booking-api/internal/shared/rabbitmq"
)

// Run wires the booking API and blocks until ctx is cancelled.
// It returns the first terminal error (server or startup failure).
func Run(ctx context.Context, port int, maxConcurrent int) error {
	log := logger.NewLogger("booking-api")

	cfg, err := config.Load()
	if err != nil {
		log.Error(ctx, "config_load_failed", "Failed to load configuration", err)
		return err
	}
	if port > 0 {
		cfg.HTTP.Port = port
	}
	if maxConcurrent > 0 {
		cfg.HTTP.MaxConcurrent = maxConcurrent
	}

	pool, err := pg.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err)
		return err
	}
	defer pool.Close()

	rmq, err := rabbitmq.Connect(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err)
		return err
	}
	defer rmq.Close()

	// repositories and application services
	repo := pg.NewRatesRepo(pool)
	availabilitySvc := availability.New(repo, log, time.Duration(cfg.Availability.CacheTTLSeconds)*time.Second)
	publisher := rabbitmq.NewBookingPublisher(rmq, cfg)
	bookingSvc := booking.New(availabilitySvc, publisher, log)

	mux := http.NewServeMux()
	availability.NewHTTPHandler(availabilitySvc, log).Register(mux)
	booking.NewHTTPHandler(bookingSvc, log).Register(mux)

	// correlation first so the limiter's wait shows up under the request id
	handler := web.WithCorrelation(log, web.WithConcurrencyLimit(cfg.HTTP.MaxConcurrent, mux))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.Info(ctx, "service_started",
		fmt.Sprintf("Booking API started on port %d", cfg.HTTP.Port),
		map[string]any{"port": cfg.HTTP.Port, "max_concurrent": cfg.HTTP.MaxConcurrent},
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		// drain keep-alives and in-flight requests
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		log.Info(context.Background(), "service_stopped", "Booking API shut down", nil)
		return nil
	case err := <-errCh:
		if err != nil {
			log.Error(ctx, "server_failed", "HTTP server terminated", err)
		}
		return err
	}
}
