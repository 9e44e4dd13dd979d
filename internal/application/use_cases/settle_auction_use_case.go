package use_cases

import (
	"context"
	"fmt"
	"time"

	"github.com/gallerio/auction-service/internal/application/ports"
	"github.com/gallerio/auction-service/internal/domain/auction"
	domainErrors "github.com/gallerio/auction-service/internal/domain/errors"
	"github.com/gallerio/auction-service/internal/pkg/clock"
	"github.com/gallerio/auction-service/internal/pkg/generator"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

// SettleAuctionUseCase performs the terminal transition for an ended auction:
// sold with an order for the winner when the reserve is met, otherwise revert
// to available. Safe to invoke any number of times; the first run flips the
// listing out of auction mode and later runs find nothing to do.
type SettleAuctionUseCase struct {
	repo       ports.AuctionRepository
	cache      ports.Cache
	biddingSvc *auction.BiddingService
	idGen      *generator.IDGenerator
	clk        clock.Clock
	log        *logger.Logger
}

func NewSettleAuctionUseCase(
	repo ports.AuctionRepository,
	cache ports.Cache,
	clk clock.Clock,
	log *logger.Logger,
) *SettleAuctionUseCase {
	return &SettleAuctionUseCase{
		repo:       repo,
		cache:      cache,
		biddingSvc: auction.NewBiddingService(),
		idGen:      generator.NewIDGenerator(),
		clk:        clk,
		log:        log,
	}
}

func (uc *SettleAuctionUseCase) SettleAuction(ctx context.Context, listingID string) (auction.SettlementOutcome, error) {
	// The lock keeps the timer and the sweep from settling the same listing
	// concurrently; the in-transaction status guard stays authoritative, so a
	// cache failure only costs a wasted transaction.
	locked, err := uc.cache.AcquireSettlementLock(ctx, listingID, 30*time.Second)
	if err != nil {
		uc.log.Warn("Settlement lock unavailable, proceeding", "error", err, "listing_id", listingID)
	} else if !locked {
		return auction.OutcomeSkipped, nil
	} else {
		defer func() {
			if err := uc.cache.ReleaseSettlementLock(ctx, listingID); err != nil {
				uc.log.Warn("Failed to release settlement lock", "error", err, "listing_id", listingID)
			}
		}()
	}

	outcome, err := uc.settle(ctx, listingID)
	if err != nil {
		return outcome, err
	}

	if outcome == auction.OutcomeSkipped {
		return outcome, nil
	}

	if err := uc.cache.ClearSettlementArmed(ctx, listingID); err != nil {
		uc.log.Warn("Failed to clear settlement arming", "error", err, "listing_id", listingID)
	}

	if err := uc.cache.InvalidateActiveAuctions(ctx); err != nil {
		uc.log.Warn("Failed to invalidate auctions feed", "error", err)
	}

	uc.log.Info("Auction settled", "listing_id", listingID, "outcome", string(outcome))
	return outcome, nil
}

func (uc *SettleAuctionUseCase) settle(ctx context.Context, listingID string) (auction.SettlementOutcome, error) {
	tx, err := uc.repo.BeginTx(ctx)
	if err != nil {
		return auction.OutcomeSkipped, fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.RollbackTx(ctx)
		}
	}()

	listing, err := tx.GetListingForUpdate(ctx, listingID)
	if err != nil {
		if err == domainErrors.ErrListingNotFound {
			// Listing deleted before settlement ran. Nothing to do.
			return auction.OutcomeSkipped, nil
		}
		return auction.OutcomeSkipped, err
	}

	if !listing.IsAuction || listing.Status != auction.StatusAuction {
		return auction.OutcomeSkipped, nil
	}

	now := uc.clk.Now()
	if listing.AuctionEndTime != nil && now.Before(*listing.AuctionEndTime) {
		// Fired early; the sweep will come back after the end time.
		return auction.OutcomeSkipped, nil
	}

	winning, err := tx.GetWinningBid(ctx, listingID)
	if err != nil && err != domainErrors.ErrBidNotFound {
		return auction.OutcomeSkipped, err
	}

	outcome := uc.biddingSvc.DecideSettlement(listing, winning)

	switch outcome {
	case auction.OutcomeSold:
		listing.MarkSold()
		if err := tx.UpdateListing(ctx, listing); err != nil {
			return outcome, fmt.Errorf("failed to update listing: %w", err)
		}

		order, err := auction.NewOrder(uc.idGen.NewOrderID(), winning.BidderID, listing.ID, winning.Amount, now)
		if err != nil {
			return outcome, err
		}

		if err := tx.CreateOrder(ctx, order); err != nil {
			return outcome, fmt.Errorf("failed to create order: %w", err)
		}

	case auction.OutcomeNoBids, auction.OutcomeNotMet:
		listing.RevertToAvailable()
		if err := tx.UpdateListing(ctx, listing); err != nil {
			return outcome, fmt.Errorf("failed to update listing: %w", err)
		}

		// No winner survives a failed auction.
		if err := tx.ClearWinningBids(ctx, listingID); err != nil {
			return outcome, fmt.Errorf("failed to clear winning bids: %w", err)
		}

	case auction.OutcomeSkipped:
		return outcome, nil
	}

	if err := tx.CommitTx(ctx); err != nil {
		return outcome, fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	return outcome, nil
}
