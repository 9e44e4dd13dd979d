package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gallerio/auction-service/internal/application/commands"
	"github.com/gallerio/auction-service/internal/application/ports"
	"github.com/gallerio/auction-service/internal/application/use_cases"
	"github.com/gallerio/auction-service/internal/config"
	"github.com/gallerio/auction-service/internal/infrastructure/http/handlers"
	"github.com/gallerio/auction-service/internal/infrastructure/persistence/postgres"
	"github.com/gallerio/auction-service/internal/infrastructure/persistence/redis"
	"github.com/gallerio/auction-service/internal/pkg/clock"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

type Server struct {
	server         *http.Server
	logger         *logger.Logger
	healthHandler  *handlers.HealthHandler
	bidHandler     *handlers.BidHandler
	listingHandler *handlers.ListingHandler
	auctionHandler *handlers.AuctionHandler
}

func NewServer(
	cfg *config.Config,
	conn *postgres.Connection,
	redisConn *redis.Connection,
	sched ports.SettlementScheduler,
	clk clock.Clock,
	log *logger.Logger,
) *Server {
	repo := postgres.NewAuctionRepository(conn)
	cache := redis.NewCache(redisConn, log)

	placeBidUseCase := use_cases.NewPlaceBidUseCase(
		repo,
		cache,
		sched,
		clk,
		log,
		time.Duration(cfg.Auction.ArmLookaheadHours)*time.Hour,
	)

	feedUseCase := use_cases.NewAuctionFeedUseCase(
		repo,
		cache,
		clk,
		log,
		cfg.Auction.FeedLimit,
		time.Duration(cfg.Auction.FeedCacheTTLSeconds)*time.Second,
	)

	placeBidHandler := commands.NewPlaceBidHandler(placeBidUseCase, log)
	startAuctionHandler := commands.NewStartAuctionHandler(repo, cache, clk, log)

	bidHandler := handlers.NewBidHandler(placeBidHandler, repo, log)
	listingHandler := handlers.NewListingHandler(repo, cache, startAuctionHandler, clk, log)
	auctionHandler := handlers.NewAuctionHandler(feedUseCase, clk, log)
	healthHandler := handlers.NewHealthHandler(conn.GetDB(), redisConn.GetClient(), log)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server:         server,
		logger:         log,
		healthHandler:  healthHandler,
		bidHandler:     bidHandler,
		listingHandler: listingHandler,
		auctionHandler: auctionHandler,
	}
}

func (s *Server) ListenAndServe() error {
	s.server.Handler = s.setupRoutes()

	s.logger.Info("Starting HTTP server", "address", s.server.Addr)

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
