// Command sysrepo-memctl is a small demonstrator binary wiring the arena
// subsystem into a dispatcher/worker pipeline, exposing Prometheus
// metrics over HTTP. It exercises internal/arena, internal/bsatn's
// allocator shim, and package dispatch together, end to end: every
// produced message is BSATN-encoded, handed to a worker, and decoded back
// out of the same piggybacked context it was built in. It is not a full
// datastore engine (the request/response scheduler, socket transport, and
// concrete record schemas are out of this subsystem's scope, per spec §1).
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kingsalone/sysrepo/dispatch"
	"github.com/kingsalone/sysrepo/internal/arena"
	"github.com/kingsalone/sysrepo/record"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	workers := flag.Int("workers", 4, "number of worker goroutines")
	metricsAddr := flag.String("metrics-addr", ":9090", "address to serve /metrics on")
	messageSize := flag.Int("message-size", 4096, "simulated message payload size in bytes")
	flag.Parse()

	wire, err := dispatch.EncodeWirePayload(strings.Repeat("x", *messageSize))
	if err != nil {
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	arena.RegisterMetrics(reg)
	dispatch.RegisterMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{Addr: *metricsAddr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var g errgroup.Group
	g.Go(func() error {
		logger.Info("serving metrics", zap.String("addr", *metricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	d := dispatch.NewDispatcher(*workers*2, logger)

	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		defer d.Close()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				var payload dispatch.DecodedPayload
				if err := d.Produce(ctx, uint32(*messageSize), dispatch.FillFromWire(wire, &payload)); err != nil && ctx.Err() == nil {
					logger.Warn("produce failed", zap.Error(err))
				}
			}
		}
	})

	g.Go(func() error {
		return dispatch.RunPool(ctx, *workers, d.Out(), logger, func(o record.Object) error {
			return nil
		})
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("exited with error", zap.Error(err))
		os.Exit(1)
	}
}
