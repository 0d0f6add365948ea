package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/portfoy-backend/internal/adapter/grpc"
	"github.com/simaogato/portfoy-backend/internal/adapter/repository/sqlstore"
	"github.com/simaogato/portfoy-backend/internal/adapter/rest"
	"github.com/simaogato/portfoy-backend/internal/config"
	"github.com/simaogato/portfoy-backend/internal/logger"
	"github.com/simaogato/portfoy-backend/internal/scheduler"
	"github.com/simaogato/portfoy-backend/internal/usecase/advisor"
	"github.com/simaogato/portfoy-backend/internal/usecase/dashboard"
	"github.com/simaogato/portfoy-backend/internal/usecase/holdings"
	"github.com/simaogato/portfoy-backend/internal/usecase/investment"
	"github.com/simaogato/portfoy-backend/internal/usecase/pricing"
	"github.com/simaogato/portfoy-backend/internal/usecase/rebalance"
	"github.com/simaogato/portfoy-backend/internal/usecase/seeder"
	"github.com/simaogato/portfoy-backend/internal/usecase/snapshot"
	"github.com/simaogato/portfoy-backend/internal/usecase/targets"
)

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	// 2. Setup Database
	ctx := context.Background()
	db, err := sqlstore.Open(cfg.DBDriver, cfg.DBConnStr)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// 3. Initialize Repositories
	assetRepo := sqlstore.NewAssetRepository(db)
	targetRepo := sqlstore.NewTargetRepository(db)
	priceRepo := sqlstore.NewPriceRepository(db)
	snapshotRepo := sqlstore.NewSnapshotRepository(db)

	// 4. Initialize Services (Use Cases)
	policy := rebalance.Policy{DeadBand: cfg.DeadBand}
	priceService := pricing.NewPriceService(priceRepo)
	holdingService := holdings.NewHoldingService(assetRepo, targetRepo)
	targetService := targets.NewTargetService(targetRepo, assetRepo)
	rebalanceService := rebalance.NewRebalanceService(assetRepo, targetRepo, priceService, policy, log)
	dashboardService := dashboard.NewDashboardService(assetRepo, targetRepo, priceService)
	snapshotService := snapshot.NewSnapshotService(assetRepo, snapshotRepo, priceService)
	advisorService := advisor.NewAdvisorService(dashboardService, snapshotService, advisor.DefaultPolicy(), cfg.RiskProfile)
	investmentService := investment.NewInvestmentService(assetRepo, priceService)

	seeded, err := seeder.NewTargetSeeder(targetRepo).Seed(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed default targets")
	}
	if seeded {
		log.Info().Msg("Default targets seeded")
	}

	// 5. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.RecoveryInterceptor(log),
			grpcadapter.LoggingInterceptor(log),
		),
	)
	grpcadapter.RegisterPortfolioServiceServer(grpcServer, grpcadapter.NewServer(
		holdingService,
		targetService,
		priceService,
		rebalanceService,
		dashboardService,
		advisorService,
	))
	reflection.Register(grpcServer)

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", grpcAddr).Msg("Failed to listen")
	}

	go func() {
		log.Info().Str("addr", grpcAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// 6. Start HTTP Server
	httpServer := rest.New(rest.Config{
		Port: cfg.HTTPPort,
		Log:  log,
		Services: rest.Services{
			Holdings:   holdingService,
			Targets:    targetService,
			Prices:     priceService,
			Rebalance:  rebalanceService,
			Dashboard:  dashboardService,
			Advisor:    advisorService,
			Snapshots:  snapshotService,
			Investment: investmentService,
		},
	})

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// 7. Background jobs
	sched := scheduler.New(log)
	snapshotJob := scheduler.NewSnapshotJob(snapshotService, log)
	if err := sched.AddJob(cfg.SnapshotSchedule, snapshotJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register snapshot job")
	}
	// Record today once at start-up, then on schedule
	if err := sched.RunNow(snapshotJob); err != nil {
		log.Warn().Err(err).Msg("Start-up snapshot failed")
	}
	sched.Start()
	if next, ok := sched.Next(snapshotJob.Name()); ok {
		log.Info().Time("next_run", next).Msg("Snapshot scheduled")
	}

	// Graceful shutdown
	waitForShutdown(log, grpcServer, httpServer, sched)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers
func waitForShutdown(log zerolog.Logger, grpcServer *grpclib.Server, httpServer *rest.Server, sched *scheduler.Scheduler) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server forced to shutdown")
	}

	grpcServer.GracefulStop()
	log.Info().Msg("Servers stopped")
}
