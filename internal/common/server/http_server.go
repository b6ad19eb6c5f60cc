package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TaxiPark/TaxiPark/internal/common/config"
	"github.com/TaxiPark/TaxiPark/internal/common/discovery"
	"github.com/TaxiPark/TaxiPark/internal/common/logger"
	"github.com/TaxiPark/TaxiPark/internal/common/middleware"
	"github.com/google/uuid"
)

type RunHTTPOptions struct {
	ShutdownTimeout time.Duration
	RateLimiter     middleware.RateLimiter
}

func defaultRunHTTPOptions() RunHTTPOptions {
	return RunHTTPOptions{
		ShutdownTimeout: 5 * time.Second,
	}
}

// LimiterFromConfig builds the server-wide rate limiter. Strategy "none"
// disables limiting; anything else falls back to a token bucket. Zero or
// missing sizes get sane defaults.
func LimiterFromConfig(rl config.RateLimitConfig) middleware.RateLimiter {
	switch rl.Strategy {
	case "none":
		return nil
	case "sliding_window":
		window := time.Duration(rl.WindowMS) * time.Millisecond
		if window <= 0 {
			window = time.Second
		}
		maxRequests := int(rl.Capacity)
		if maxRequests <= 0 {
			maxRequests = 200
		}
		return middleware.NewSlidingWindow(window, maxRequests)
	default:
		capacity, rate := rl.Capacity, rl.Rate
		if capacity <= 0 {
			capacity = 200
		}
		if rate <= 0 {
			rate = 100
		}
		return middleware.NewTokenBucket(capacity, rate)
	}
}

// RunHTTPServer is the shared HTTP service template:
//   - wraps the handler with the middleware chain
//   - serves /healthz
//   - registers the service in Consul (HTTP check, best effort)
//   - shuts down gracefully on SIGINT/SIGTERM
func RunHTTPServer(cfg *config.Config, log logger.Logger, mux *http.ServeMux, opts ...func(*RunHTTPOptions)) error {
	if cfg == nil {
		return fmt.Errorf("cfg is nil")
	}
	if log == nil {
		return fmt.Errorf("log is nil")
	}
	if mux == nil {
		return fmt.Errorf("mux is nil")
	}

	o := defaultRunHTTPOptions()
	o.RateLimiter = LimiterFromConfig(cfg.Server.RateLimit)
	for _, apply := range opts {
		if apply != nil {
			apply(&o)
		}
	}

	// Consul client; failure must not block startup.
	consulClient, err := discovery.NewConsulClient(cfg.Consul.Host, cfg.Consul.Port)
	if err != nil {
		log.Warnf("failed to connect to Consul: %v", err)
		consulClient = nil
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	handler := Chain(mux,
		Recovery(log),                // keep panics from killing the process
		Tracing(cfg.Server.Name),     // per-request server span
		AccessLog(log),               // request logging
		RateLimit(o.RateLimiter, log),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if consulClient != nil {
		serviceID := fmt.Sprintf("%s-%s", cfg.Server.Name, uuid.New().String())
		registry := discovery.NewServiceRegistry(
			consulClient,
			serviceID,
			cfg.Server.Name,
			cfg.Server.Host,
			cfg.Server.HTTPPort,
			[]string{"http"},
		)
		if err := registry.Register(); err != nil {
			log.Warnf("failed to register service to Consul: %v", err)
		} else {
			log.Infof("Service registered to Consul: %s", serviceID)
			defer func() {
				if err := registry.Deregister(); err != nil {
					log.Warnf("failed to deregister service from Consul: %v", err)
				}
			}()
		}
	}

	log.Infof("%s listening on %s", cfg.Server.Name, srv.Addr)

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infof("received signal %v, shutting down...", sig)
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http serve failed: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("http shutdown timeout, forcing close: %v", err)
		_ = srv.Close()
	} else {
		log.Info("http server stopped gracefully")
	}

	return nil
}

// WithShutdownTimeout changes how long graceful shutdown may take.
func WithShutdownTimeout(d time.Duration) func(*RunHTTPOptions) {
	return func(o *RunHTTPOptions) {
		if d > 0 {
			o.ShutdownTimeout = d
		}
	}
}

// WithRateLimiter swaps the server-wide rate limiter. Pass nil to disable.
func WithRateLimiter(l middleware.RateLimiter) func(*RunHTTPOptions) {
	return func(o *RunHTTPOptions) {
		o.RateLimiter = l
	}
}
