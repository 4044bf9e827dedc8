// Command schedd runs the coroutine scheduler behind an HTTP update-ingress
// endpoint and a diagnostics websocket, wiring together internal/config,
// internal/bot, internal/scheduler, and internal/transport/ws. Adapted from
// the source's cmd/server/main.go: flag parsing, config load, signal
// handling, and graceful shutdown follow the same shape.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agent-racer/botsched/internal/bot"
	"github.com/agent-racer/botsched/internal/config"
	"github.com/agent-racer/botsched/internal/scheduler"
	"github.com/agent-racer/botsched/internal/simulate"
	"github.com/agent-racer/botsched/internal/transport/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	listenAddr := flag.String("listen", "", "Override the configured listen address")
	simulateMode := flag.Bool("simulate", false, "Drive the scheduler with synthetic traffic instead of real updates")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *listenAddr != "" {
		cfg.Server.ListenAddr = *listenAddr
	}

	sched := scheduler.New(scheduler.Config{
		WorkerCount:  cfg.Scheduler.WorkerCount,
		TickInterval: cfg.Scheduler.TickInterval,
	})
	b := bot.New(sched)
	registerCommands(b)

	snapshotInterval := cfg.Transport.DiagnosticsSnapshot
	if snapshotInterval <= 0 {
		snapshotInterval = 5 * time.Second
	}
	throttle := cfg.Transport.DiagnosticsThrottle
	if throttle <= 0 {
		throttle = 100 * time.Millisecond
	}
	broadcaster := ws.NewBroadcaster(sched, throttle, snapshotInterval)
	sched.SetOnChange(broadcaster.NotifyChanged)
	server := ws.NewServer(b, broadcaster, cfg.Transport.AllowedOrigins, cfg.Transport.AuthToken)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *simulateMode {
		log.Println("starting in simulate mode")
		gen := simulate.NewGenerator(b)
		gen.Start(ctx, 500*time.Millisecond)
	}

	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutting down...")
		cancel()
		broadcaster.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := sched.Shutdown(shutdownCtx); err != nil {
			log.Printf("scheduler shutdown: %v", err)
		}
		os.Exit(0)
	}()

	if err := ws.ListenAndServe(cfg.Server.ListenAddr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
