package use_cases

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gallerio/auction-service/internal/application/ports"
	"github.com/gallerio/auction-service/internal/domain/auction"
	domainErrors "github.com/gallerio/auction-service/internal/domain/errors"
	"github.com/gallerio/auction-service/internal/pkg/clock"
	"github.com/gallerio/auction-service/internal/pkg/generator"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

// PlaceBidUseCase commits bids. The read-validate-write sequence runs inside
// one serializable transaction with the listing row locked, so concurrent
// bids on the same listing observe a single total order of commits and each
// accepted bid strictly exceeds the previously accepted one.
type PlaceBidUseCase struct {
	repo       ports.AuctionRepository
	cache      ports.Cache
	scheduler  ports.SettlementScheduler
	biddingSvc *auction.BiddingService
	idGen      *generator.IDGenerator
	clk        clock.Clock
	log        *logger.Logger

	armLookahead  time.Duration
	retryAttempts int
}

func NewPlaceBidUseCase(
	repo ports.AuctionRepository,
	cache ports.Cache,
	scheduler ports.SettlementScheduler,
	clk clock.Clock,
	log *logger.Logger,
	armLookahead time.Duration,
) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		repo:          repo,
		cache:         cache,
		scheduler:     scheduler,
		biddingSvc:    auction.NewBiddingService(),
		idGen:         generator.NewIDGenerator(),
		clk:           clk,
		log:           log,
		armLookahead:  armLookahead,
		retryAttempts: 3,
	}
}

func (uc *PlaceBidUseCase) PlaceBid(ctx context.Context, bidderID, listingID string, amount decimal.Decimal) (string, error) {
	if bidderID == "" {
		return "", domainErrors.ErrNotAuthenticated
	}

	if !amount.IsPositive() {
		return "", domainErrors.ErrInvalidAmount
	}

	var bidID string
	var listing *auction.Listing
	var err error

	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		bidID, listing, err = uc.attemptBid(ctx, bidderID, listingID, amount)
		if err == nil {
			break
		}

		if isBusinessError(err) {
			return "", err
		}

		uc.log.Warn("Bid attempt failed", "attempt", attempt+1, "error", err.Error(), "listing_id", listingID)

		if attempt < uc.retryAttempts-1 {
			time.Sleep(time.Millisecond * time.Duration(50*(attempt+1)))
		}
	}

	if err != nil {
		return "", fmt.Errorf("%w: %v", domainErrors.ErrTransactionFailed, err)
	}

	uc.armSettlement(ctx, listing)

	uc.log.Info("Bid accepted",
		"bid_id", bidID,
		"listing_id", listingID,
		"bidder_id", bidderID,
		"amount", amount.String(),
		"bid_count", listing.BidCount,
	)

	return bidID, nil
}

func (uc *PlaceBidUseCase) attemptBid(ctx context.Context, bidderID, listingID string, amount decimal.Decimal) (string, *auction.Listing, error) {
	tx, err := uc.repo.BeginTx(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.RollbackTx(ctx)
		}
	}()

	listing, err := tx.GetListingForUpdate(ctx, listingID)
	if err != nil {
		return "", nil, err
	}

	now := uc.clk.Now()
	if err := uc.biddingSvc.ValidateBid(listing, bidderID, amount, now); err != nil {
		return "", nil, err
	}

	// Normally a single winning row exists; clearing by listing keeps the
	// at-most-one-winner invariant even if state was damaged earlier.
	if err := tx.ClearWinningBids(ctx, listingID); err != nil {
		return "", nil, fmt.Errorf("failed to clear winning bids: %w", err)
	}

	bid, err := auction.NewBid(uc.idGen.NewBidID(), listingID, bidderID, amount, now)
	if err != nil {
		return "", nil, err
	}

	if err := tx.CreateBid(ctx, bid); err != nil {
		return "", nil, fmt.Errorf("failed to create bid: %w", err)
	}

	listing.AcceptBid(amount)
	if err := tx.UpdateListing(ctx, listing); err != nil {
		return "", nil, fmt.Errorf("failed to update listing: %w", err)
	}

	if err := tx.CommitTx(ctx); err != nil {
		return "", nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	return bid.ID, listing, nil
}

// armSettlement (re)arms the deferred settlement once the auction is inside
// the lookahead window. The scheduler upserts by listing id and the cache key
// records the arming across restarts, so repeated bids never stack timers.
func (uc *PlaceBidUseCase) armSettlement(ctx context.Context, listing *auction.Listing) {
	if listing.AuctionEndTime == nil {
		return
	}

	remaining := listing.AuctionEndTime.Sub(uc.clk.Now())
	if remaining <= 0 || remaining >= uc.armLookahead {
		return
	}

	uc.scheduler.Arm(listing.ID, *listing.AuctionEndTime)

	firstArm, err := uc.cache.MarkSettlementArmed(ctx, listing.ID, remaining+time.Hour)
	if err != nil {
		uc.log.Warn("Failed to record settlement arming", "error", err, "listing_id", listing.ID)
		return
	}

	if firstArm {
		uc.log.Info("Settlement armed", "listing_id", listing.ID, "end_time", listing.AuctionEndTime)
	}
}

func isBusinessError(err error) bool {
	switch {
	case err == domainErrors.ErrListingNotFound,
		err == domainErrors.ErrNotInAuction,
		err == domainErrors.ErrAuctionEnded,
		err == domainErrors.ErrBidTooLow,
		err == domainErrors.ErrSelfBid,
		err == domainErrors.ErrInvalidAmount,
		err == domainErrors.ErrNotAuthenticated:
		return true
	default:
		return false
	}
}
