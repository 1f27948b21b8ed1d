package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/erpc/conformance/common"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// StartMetricsServer serves /metrics until ctx is done. The returned channel
// receives the listener error, if any.
func StartMetricsServer(ctx context.Context, logger *zerolog.Logger, cfg *common.MetricsConfig) <-chan error {
	errCh := make(chan error, 1)
	if cfg == nil || !cfg.Enabled {
		close(errCh)
		return errCh
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("starting metrics server")
	go func() {
		defer close(errCh)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("error starting metrics server")
			errCh <- err
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server forced to shutdown")
		} else {
			logger.Info().Msg("metrics server stopped")
		}
	}()

	return errCh
}
