package main

import (
	"context"
	"os"
	"strconv"

	"github.com/gemnet/bidengine/internal/auction/application"
	"github.com/gemnet/bidengine/internal/auction/domain"
	auctionhttp "github.com/gemnet/bidengine/internal/auction/infra/http"
	auctionpg "github.com/gemnet/bidengine/internal/auction/infra/repository/postgres"
	auctionws "github.com/gemnet/bidengine/internal/auction/infra/websocket"
	identitypg "github.com/gemnet/bidengine/internal/identity/infra/repository/postgres"
	"github.com/gemnet/bidengine/internal/shared/db"
	"github.com/gemnet/bidengine/internal/shared/db/migrations"
	"github.com/gemnet/bidengine/internal/shared/httpserver"
	"github.com/gemnet/bidengine/internal/shared/logger"
	"github.com/gemnet/bidengine/internal/shared/websocket"
	"go.uber.org/zap"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting GemNet bid engine...")

	log.Info("Running database migrations...")
	if err := migrations.RunMigrations(); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.GetPostgresDBPool(ctx)
	if err != nil {
		log.Fatal("Database connection failed", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	auctionRepo := auctionpg.NewAuctionRepository(pool)
	bidRepo := auctionpg.NewBidRepository(pool)
	watchlistRepo := auctionpg.NewWatchlistRepository(pool)
	bidderRepo := identitypg.NewBidderRepository(pool)

	// Bid engine
	txRunner := db.NewPgxTxRunner(pool)
	policy := domain.CatalogIncrementPolicy{}
	retryBudget := retryBudgetFromEnv(log)
	service := application.NewAuctionService(
		application.NewPlaceBidUseCase(auctionRepo, bidRepo, policy, txRunner, retryBudget),
		application.NewEstimateWinChanceUseCase(auctionRepo, policy),
		application.NewRemainingTimeUseCase(auctionRepo),
		application.NewSettleAuctionUseCase(auctionRepo, bidRepo, txRunner, retryBudget),
		application.NewGetAuctionStateUseCase(auctionRepo, bidRepo),
		application.NewListAuctionsUseCase(auctionRepo),
	)

	// WebSocket hub and handler
	hub := websocket.NewHub()
	go hub.Run(ctx)
	wsHandler := auctionws.NewAuctionWSHandler(service, bidderRepo, hub)
	go wsHandler.ListenForMessages(ctx)

	// HTTP server
	server := httpserver.NewServer()
	auctionhttp.NewAuctionHandler(service, bidderRepo, watchlistRepo).RegisterRoutes(server.App())
	auctionws.RegisterRoutes(ctx, server.App(), hub)

	addr := os.Getenv("APP_ADDR")
	if addr == "" {
		addr = ":9000"
	}
	if err := server.Start(addr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}

// retryBudgetFromEnv reads BID_RETRY_ATTEMPTS. Zero means "use the engine
// default", so an unset variable keeps the built-in budget.
func retryBudgetFromEnv(log *zap.Logger) int {
	raw := os.Getenv("BID_RETRY_ATTEMPTS")
	if raw == "" {
		return 0
	}
	attempts, err := strconv.Atoi(raw)
	if err != nil || attempts < 1 {
		log.Warn("Invalid BID_RETRY_ATTEMPTS, using default", zap.String("value", raw))
		return 0
	}
	return attempts
}
