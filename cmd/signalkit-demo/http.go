package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func newMux(promRegistry *prometheus.Registry) *http.ServeMux {
	router := http.NewServeMux()

	router.Handle("/", defaultHandler())

	promHandler := promhttp.InstrumentMetricHandler(
		promRegistry,
		promhttp.HandlerFor(promRegistry,
			promhttp.HandlerOpts{
				Registry: promRegistry,
			}),
	)

	router.Handle("/metrics", promHandler)

	return router
}

func defaultHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusOK)

		fmt.Fprintln(w, "signalkit demo")
	})
}

func runMetricsServer(ctx context.Context, listener net.Listener, promRegistry *prometheus.Registry, logger zerolog.Logger) error {
	srv := &http.Server{
		Handler:      newMux(promRegistry),
		ErrorLog:     log.New(logger, "", 0),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("address", listener.Addr().String()).Msg("serving metrics")

	err := srv.Serve(listener)
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not serve HTTP on %s: %w", listener.Addr(), err)
	}

	return nil
}
