// Command horusd is the HORUS process entry point: it loads configuration
// from the environment, builds the fixed-rate priority scheduler, registers
// nodes, starts the introspection HTTP server, and runs until interrupted.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/horus-rt/horus/internal/config"
	"github.com/horus-rt/horus/internal/introspect"
	"github.com/horus-rt/horus/internal/logging"
	"github.com/horus-rt/horus/internal/metrics"
	"github.com/horus-rt/horus/internal/scheduler"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "horusd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadOrDefault()

	log, err := logging.New(logging.FromConfig(cfg.Logging))
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	m := metrics.New()
	sched := scheduler.New(cfg.Scheduler, cfg.Channel, log, m)

	sched.Add(&plannerNode{}, 0, true)
	sched.Add(&driverNode{}, 1, true)

	log.Info("horusd starting",
		zap.Int("tick_hz", cfg.Scheduler.TickHz),
		zap.String("run_id", sched.RunID().String()),
	)

	var introServer *introspect.Server
	if cfg.Introspect.Enabled {
		introServer = introspect.New(cfg.Introspect, log, sched, sched.Registry(), m)
		go func() {
			if err := introServer.ListenAndServe(); err != nil {
				log.Error("introspection server stopped unexpectedly", zap.Error(err))
			}
		}()
	}

	err = sched.Run()

	if introServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := introServer.Shutdown(ctx); shutdownErr != nil {
			log.Warn("introspection server shutdown error", zap.Error(shutdownErr))
		}
	}

	if err != nil {
		return fmt.Errorf("scheduler run: %w", err)
	}
	log.Info("horusd stopped")
	return nil
}
