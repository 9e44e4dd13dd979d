package use_cases

import (
	"context"
	"time"

	"github.com/gallerio/auction-service/internal/application/ports"
	"github.com/gallerio/auction-service/internal/domain/auction"
	"github.com/gallerio/auction-service/internal/pkg/clock"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

// AuctionFeedUseCase serves the public list of running auctions through a
// short-TTL cache. Lifecycle changes (auction start, settlement, deletion)
// invalidate the cache; bid amount updates ride out the TTL.
type AuctionFeedUseCase struct {
	repo  ports.AuctionRepository
	cache ports.Cache
	clk   clock.Clock
	log   *logger.Logger

	limit    int
	cacheTTL time.Duration
}

func NewAuctionFeedUseCase(
	repo ports.AuctionRepository,
	cache ports.Cache,
	clk clock.Clock,
	log *logger.Logger,
	limit int,
	cacheTTL time.Duration,
) *AuctionFeedUseCase {
	return &AuctionFeedUseCase{
		repo:     repo,
		cache:    cache,
		clk:      clk,
		log:      log,
		limit:    limit,
		cacheTTL: cacheTTL,
	}
}

// GetActiveAuctions returns auctions that have not reached their end time,
// soonest-ending first. Auctions past their end time never appear, even
// before settlement has run. A non-positive limit falls back to the
// configured default; the cache holds only the default page, so explicit
// limits go straight to the store.
func (uc *AuctionFeedUseCase) GetActiveAuctions(ctx context.Context, limit int) ([]*auction.Listing, error) {
	useCache := limit <= 0 || limit == uc.limit
	if limit <= 0 {
		limit = uc.limit
	}

	if useCache {
		cached, found, err := uc.cache.GetActiveAuctions(ctx)
		if err != nil {
			uc.log.Warn("Auctions feed cache read failed", "error", err)
		}
		if found {
			return cached, nil
		}
	}

	listings, err := uc.repo.GetActiveAuctions(ctx, uc.clk.Now(), limit)
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := uc.cache.SetActiveAuctions(ctx, listings, uc.cacheTTL); err != nil {
			uc.log.Warn("Auctions feed cache write failed", "error", err)
		}
	}

	return listings, nil
}
