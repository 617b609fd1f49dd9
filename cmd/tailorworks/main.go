package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tailorworks-lab/tailorworks/internal/aggregation"
	"github.com/tailorworks-lab/tailorworks/internal/billing"
	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
	corecfg "github.com/tailorworks-lab/tailorworks/internal/core/config"
	"github.com/tailorworks-lab/tailorworks/internal/core/storage/postgres"
	"github.com/tailorworks-lab/tailorworks/internal/ingestion"
	"github.com/tailorworks-lab/tailorworks/internal/migrations"
	"github.com/tailorworks-lab/tailorworks/internal/projection"
	"github.com/tailorworks-lab/tailorworks/internal/server"
)

func main() {
	configPath := flag.String("config", "tailorworks.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"server", fmtAddr(cfg.Server.Host, cfg.Server.Port),
		"async", cfg.Aggregation.AsyncEnabled,
		"legacy_delete_quirks", cfg.Aggregation.LegacyDeleteQuirks,
	)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	billStore := postgres.NewBillAdapter(dbAdapter.DB())

	// 3. Initialize Aggregation (event-driven rollups)
	aggOpts := analytics.Options{LegacyDeleteQuirks: cfg.Aggregation.LegacyDeleteQuirks}
	aggSvc := aggregation.NewService(dbAdapter, aggOpts, cfg.Aggregation.ApplyRetries)

	var (
		dispatcher *aggregation.Dispatcher
		sink       billing.EventSink
	)
	if cfg.Aggregation.AsyncEnabled {
		dispatcher = aggregation.NewDispatcher(aggSvc, cfg.Aggregation.ChannelBufferSize)
		sink = dispatcher
	} else {
		sink = syncSink{svc: aggSvc}
	}

	// 4. Initialize Services
	billingSvc := billing.NewService(billStore, sink)
	ingestionSvc := ingestion.NewService(aggSvc, dispatcher)
	projectionSvc := projection.NewService(dbAdapter)

	// 5. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode)
	if dispatcher != nil {
		srv.WithQueueStats(dispatcher)
	}
	billingSvc.RegisterRoutes(srv.Engine)
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)
	if dispatcher != nil {
		g.Go(func() error {
			return dispatcher.Start(gctx)
		})
	}
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Service stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// syncSink applies bill events inline when the async dispatcher is
// disabled. Apply failures are logged, matching the fire-and-forget
// contract billing expects from its sink.
type syncSink struct {
	svc *aggregation.Service
}

func (s syncSink) Enqueue(ev analytics.BillEvent) error {
	if _, err := s.svc.ApplyBillEvent(context.Background(), ev); err != nil {
		return err
	}
	return nil
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
