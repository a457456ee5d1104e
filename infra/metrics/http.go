package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kilianp07/greetd/infra/logger"
)

// NewMux returns a ServeMux exposing Prometheus metrics on /metrics. Extra
// handlers may be mounted on it by the caller.
func NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Serve runs an HTTP server for handler on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	log := logger.New("http")
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("server shutdown: %v", err)
		}
		cancel()
	}()
	log.Infof("listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartPromServer serves only /metrics on addr until ctx is canceled.
func StartPromServer(ctx context.Context, addr string) error {
	return Serve(ctx, addr, NewMux())
}
