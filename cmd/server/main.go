package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gallerio/auction-service/internal/application/use_cases"
	"github.com/gallerio/auction-service/internal/config"
	"github.com/gallerio/auction-service/internal/infrastructure/http/server"
	"github.com/gallerio/auction-service/internal/infrastructure/monitoring"
	"github.com/gallerio/auction-service/internal/infrastructure/persistence/postgres"
	"github.com/gallerio/auction-service/internal/infrastructure/persistence/redis"
	"github.com/gallerio/auction-service/internal/infrastructure/scheduler"
	"github.com/gallerio/auction-service/internal/pkg/clock"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	flag.Parse()

	log := logger.NewLogger()
	log.Info("Starting Auction Service")

	cfg, configErr := config.LoadConfig(*configPath)
	if configErr != nil {
		log.Fatal("Failed to load configuration", "error", configErr)
	}

	db, dbErr := postgres.NewConnection(cfg.Database)
	if dbErr != nil {
		log.Fatal("Failed to connect to database", "error", dbErr)
	}
	defer db.Close()

	if migrationErr := postgres.RunMigrations(cfg.Database); migrationErr != nil {
		log.Fatal("Failed to run migrations", "error", migrationErr)
	}

	redisConn, err := redis.NewConnection(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisConn.Close()

	dbMetricsCollector := monitoring.NewDBMetricsCollector(db.GetDB())
	dbMetricsCollector.StartCollecting(context.Background(), 30*time.Second)

	clk := clock.NewRealClock()
	repo := postgres.NewAuctionRepository(db)
	cache := redis.NewCache(redisConn, log)

	settleUseCase := use_cases.NewSettleAuctionUseCase(repo, cache, clk, log)
	auctionScheduler := scheduler.NewAuctionScheduler(
		repo,
		settleUseCase,
		clk,
		log,
		time.Duration(cfg.Auction.SweepIntervalSeconds)*time.Second,
	)

	httpServer := server.NewServer(cfg, db, redisConn, auctionScheduler, clk, log)

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	go auctionScheduler.Start(serverCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigChan
		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		log.Info("Shutting down server...")
		auctionScheduler.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}

		serverStopCtx()
	}()

	log.Info("Server starting", "address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed", "error", err)
	}

	<-serverCtx.Done()
	log.Info("Server stopped")
}
