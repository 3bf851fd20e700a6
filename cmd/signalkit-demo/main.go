// signalkit-demo exercises the signal package: it runs a greeting
// signal with connect/disconnect, a timed wait released by a delayed
// fire, and optionally serves prometheus metrics while a heartbeat
// signal fires in the background.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	ossignal "os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/signalkit/signalkit/internal/version"
	"github.com/signalkit/signalkit/pkg/signal"
)

const exitFail = 1

func run(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet(filepath.Base(args[0]), flag.ExitOnError)

	config := struct {
		Debug         bool
		Verbose       bool
		ReportVersion bool
		GreetName     string
		FireDelay     time.Duration
		Heartbeat     time.Duration
		ListenAddr    string
	}{
		GreetName: "Blue",
		FireDelay: 5 * time.Second,
		Heartbeat: time.Second,
	}

	flags.BoolVar(&config.Debug, "debug", config.Debug, "debug output (enables verbose)")
	flags.BoolVar(&config.Verbose, "verbose", config.Verbose, "verbose logging")
	flags.BoolVar(&config.ReportVersion, "version", config.ReportVersion, "report version and exit")
	flags.StringVar(&config.GreetName, "greet-name", config.GreetName, "name delivered by the greeting signal")
	flags.DurationVar(&config.FireDelay, "fire-delay", config.FireDelay, "delay before the timed signal fires")
	flags.DurationVar(&config.Heartbeat, "heartbeat", config.Heartbeat, "interval between heartbeat fires")
	flags.StringVar(&config.ListenAddr, "listen-address", config.ListenAddr, "serve prometheus metrics on this address and keep firing heartbeats")

	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	if config.ReportVersion {
		fmt.Printf(
			"%s version=\"%s\" buildstamp=\"%s\" commit=\"%s\"\n",
			flags.Name(),
			version.Short(),
			version.Buildstamp(),
			version.Commit(),
		)
		return nil
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	zl := zerolog.New(stdout).With().Timestamp().Str("program", filepath.Base(args[0])).Logger()

	switch {
	case config.Debug:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		zl = zl.With().Caller().Logger()
		config.Verbose = true

	case config.Verbose:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)

	default:
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	zl.Info().
		Str("version", version.Short()).
		Str("commit", version.Commit()).
		Str("buildstamp", version.Buildstamp()).
		Msg("starting")

	promRegistry := prometheus.NewRegistry()
	metrics := signal.NewMetrics(promRegistry)

	hub := signal.NewHub[string](
		signal.WithLogger(zl.With().Str("subsystem", "signals").Logger()),
		signal.WithMetrics(metrics),
	)
	defer hub.Close()

	runGreetingDemo(hub, config.GreetName, zl)

	baseCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(baseCtx)

	g.Go(func() error {
		return signalHandler(ctx, zl.With().Str("subsystem", "signal handler").Logger())
	})

	if config.ListenAddr != "" {
		listener, err := net.Listen("tcp", config.ListenAddr)
		if err != nil {
			return errors.Wrap(err, "creating listener")
		}

		g.Go(func() error {
			return runTimedDemo(ctx, hub, config.FireDelay, zl)
		})

		g.Go(func() error {
			return runMetricsServer(ctx, listener, promRegistry, zl.With().Str("subsystem", "http").Logger())
		})

		g.Go(func() error {
			return runHeartbeat(ctx, hub, config.Heartbeat)
		})
	} else {
		if err := runTimedDemo(ctx, hub, config.FireDelay, zl); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		// Nothing left to serve, release the signal handler.
		cancel()
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// runGreetingDemo connects a greeting handler, fires it, disconnects it
// and fires again to show that delivery stops.
func runGreetingDemo(hub *signal.Hub[string], name string, zl zerolog.Logger) {
	greet := hub.Signal("greet")

	hello := greet.Connect(func(name string) {
		zl.Info().Str("name", name).Msg("Hello")
	})

	greet.Fire(name)

	zl.Info().Bool("connected", hello.Connected()).Msg("before disconnect")

	hello.Disconnect()

	zl.Info().Bool("connected", hello.Connected()).Msg("after disconnect")

	// Nobody is listening anymore, so this delivers nothing.
	greet.Fire("Purple")
}

// runTimedDemo fires the welcome signal after the configured delay from
// a separate goroutine while the caller blocks waiting for it, then
// reports the measured elapsed time.
func runTimedDemo(ctx context.Context, hub *signal.Hub[string], delay time.Duration, zl zerolog.Logger) error {
	welcome := hub.Signal("welcome")

	welcome.Connect(func(name string) {
		zl.Info().Str("name", name).Msg("Welcome")
	})

	go func() {
		select {
		case <-time.After(delay):
			welcome.Fire("Blue")
		case <-ctx.Done():
		}
	}()

	elapsed, err := welcome.WaitContext(ctx)
	if err != nil {
		return err
	}

	zl.Info().Int64("elapsed_ms", elapsed.Milliseconds()).Msg("welcome was fired")

	return nil
}

// runHeartbeat fires the heartbeat signal on every tick until the
// context is cancelled, to give the metrics endpoint something to show.
func runHeartbeat(ctx context.Context, hub *signal.Hub[string], interval time.Duration) error {
	beat := hub.Signal("heartbeat")
	beat.Connect(func(string) {})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case t := <-ticker.C:
			beat.Fire(t.Format(time.RFC3339))
		case <-ctx.Done():
			return nil
		}
	}
}

func main() {
	if err := run(os.Args, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "E: %s\n", err)
		os.Exit(exitFail)
	}
}

func signalHandler(ctx context.Context, logger zerolog.Logger) error {
	sigCh := make(chan os.Signal, 1)

	ossignal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		return fmt.Errorf("got signal %s", sig)

	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		return nil
	}
}
