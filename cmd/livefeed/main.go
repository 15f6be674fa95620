// livefeed connects to the crmdeck realtime endpoint and streams domain
// events to the console.
// Usage: go run ./cmd/livefeed --config configs/livefeed.example.yaml
//
// The bearer token comes from config (auth.token / auth.token_file) or the
// CRMDECK_TOKEN environment variable. Without a token the feed stays
// disabled and the process just waits for a signal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/crmdeck/realtime/internal/auth"
	"github.com/crmdeck/realtime/internal/config"
	"github.com/crmdeck/realtime/internal/events"
	"github.com/crmdeck/realtime/internal/realtime"
	"github.com/crmdeck/realtime/internal/transport"
	"github.com/crmdeck/realtime/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults apply when omitted)")
	verbose := flag.Bool("verbose", false, "print full event payloads")
	showVersion := flag.Bool("version", false, "print version and exit")
	statsEvery := flag.Duration("stats", 30*time.Second, "interval for connection stats logging")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	// Setup logger
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// Load config
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadAndValidate(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger.Info("livefeed starting",
		"version", version.String(),
		"endpoint", cfg.Server.URL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Token sources, most specific first.
	tokens := auth.Chain{
		auth.StaticToken(cfg.Auth.Token),
		auth.FromFile(cfg.Auth.TokenFile),
		auth.FromEnv(auth.EnvToken),
	}
	if cfg.Auth.TokenFile == "" {
		tokens = auth.Chain{
			auth.StaticToken(cfg.Auth.Token),
			auth.FromEnv(auth.EnvToken),
		}
	}

	manager := realtime.NewManager(realtime.Config{
		Transport: transport.Config{
			URL:            cfg.Server.URL,
			ConnectTimeout: cfg.Server.ConnectTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			PingInterval:   cfg.Server.PingInterval,
			PongTimeout:    cfg.Server.PongTimeout,
			MaxAttempts:    cfg.Reconnect.MaxAttempts,
			BaseDelay:      cfg.Reconnect.BaseDelay,
			MaxDelay:       cfg.Reconnect.MaxDelay,
		},
		QueueCapacity: cfg.Queue.Capacity,
	}, tokens, logger)

	// Tail every domain event.
	for _, event := range events.Domain() {
		manager.On(event, func(payload []byte) {
			if *verbose {
				logger.Info("event", "name", string(event), "payload", string(payload))
			} else {
				logger.Info("event", "name", string(event), "bytes", len(payload))
			}
		})
	}

	// Surface connection health like any other event.
	manager.On(events.ConnectionStatus, func(payload []byte) {
		logger.Info("connection status", "payload", string(payload))
	})

	manager.Connect(ctx)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(*statsEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				s := manager.Stats()
				logger.Info("connection stats",
					"state", string(s.State),
					"attempt", s.Attempt,
					"queue_depth", s.QueueDepth,
					"queue_dropped", s.QueueDropped,
				)
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		manager.Disconnect()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("livefeed exited with error", "error", err)
		os.Exit(1)
	}
}
