// Command casstress hammers one shared cell with compare-and-exchange retry
// loops from many goroutines and checks that no update was lost.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/bassosimone/getoptx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/srediag/plugin-cas/adapter"
	"github.com/srediag/plugin-cas/internal/logging"
	"github.com/srediag/plugin-cas/internal/stress"
	"github.com/srediag/plugin-cas/pkg/counter"
	"github.com/srediag/plugin-cas/pkg/health"
)

// CLI is the command line interface.
type CLI struct {
	Counter    bool            `doc:"increment through pkg/counter instead of a bare retry loop"`
	Help       bool            `doc:"prints this help message" short:"h"`
	Increments int             `doc:"increments committed by each worker" short:"n"`
	Listen     string          `doc:"after the run, serve /metrics, /live and /ready on this address" short:"l"`
	PoolSize   int             `doc:"maximum number of workers running at once" short:"p"`
	Verbose    getoptx.Counter `doc:"enable verbose mode" short:"v"`
	Width      string          `doc:"cell width: int or int32"`
	Workers    int             `doc:"number of concurrent workers" short:"w"`
}

// getopt parses command line flags.
func getopt() *CLI {
	defaults := stress.DefaultConfig()
	opts := &CLI{
		Counter:    false,
		Help:       false,
		Increments: defaults.Increments,
		Listen:     "",
		PoolSize:   defaults.PoolSize,
		Verbose:    0,
		Width:      string(defaults.Width),
		Workers:    defaults.Workers,
	}
	parser := getoptx.MustNewParser(opts, getoptx.NoPositionalArguments())
	parser.MustGetopt(os.Args)
	if opts.Help {
		parser.PrintUsage(os.Stdout)
		os.Exit(0)
	}
	return opts
}

func main() {
	opts := getopt()
	if opts.Verbose > 0 {
		logging.Verbose(int(opts.Verbose))
	}

	promRegistry := prometheus.NewRegistry()
	observer, err := adapter.NewPrometheusObserver(promRegistry)
	if err != nil {
		fatal(err)
	}
	counters := counter.NewRegistry(observer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := stress.Run(ctx, &stress.Config{
		Workers:    opts.Workers,
		Increments: opts.Increments,
		PoolSize:   opts.PoolSize,
		Width:      stress.Width(opts.Width),
		Counter:    opts.Counter,
		Observer:   observer,
		Registry:   counters,
	}, nil)
	if err != nil {
		fatal(err)
	}
	fmt.Print(result.Report())

	if opts.Listen != "" {
		if err := serve(ctx, opts.Listen, promRegistry, counters); err != nil {
			fatal(err)
		}
	}
	if result.Err() != nil {
		os.Exit(1)
	}
}

// serve exposes metrics and health endpoints until ctx is done.
func serve(ctx context.Context, address string, gatherer prometheus.Gatherer, counters *counter.Registry) error {
	probes := health.NewHandler(counters, 0)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/live", probes)
	mux.Handle("/ready", probes)

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("shutdown")
		}
	}()
	log.WithField("address", address).Info("serving metrics and health")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", address, err)
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "fatal: %s\n", err.Error())
	os.Exit(1)
}
