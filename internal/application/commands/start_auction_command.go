package commands

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gallerio/auction-service/internal/application/ports"
	"github.com/gallerio/auction-service/internal/domain/auction"
	domainErrors "github.com/gallerio/auction-service/internal/domain/errors"
	"github.com/gallerio/auction-service/internal/pkg/clock"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

type StartAuctionCommand struct {
	ListingID    string
	OwnerID      string
	EndTime      time.Time
	ReservePrice decimal.NullDecimal
}

type StartAuctionResponse struct {
	ListingID      string `json:"listing_id"`
	AuctionEndTime int64  `json:"auction_end_time"`
}

// StartAuctionHandler flips an owner's available listing into auction mode.
// The current-bid cache is seeded from the reserve price inside the listing
// transition, so the first bid must clear the reserve.
type StartAuctionHandler struct {
	repo  ports.AuctionRepository
	cache ports.Cache
	clk   clock.Clock
	log   *logger.Logger
}

func NewStartAuctionHandler(
	repo ports.AuctionRepository,
	cache ports.Cache,
	clk clock.Clock,
	log *logger.Logger,
) *StartAuctionHandler {
	return &StartAuctionHandler{
		repo:  repo,
		cache: cache,
		clk:   clk,
		log:   log,
	}
}

func (h *StartAuctionHandler) Handle(ctx context.Context, cmd StartAuctionCommand) (*StartAuctionResponse, error) {
	if cmd.OwnerID == "" {
		return nil, domainErrors.ErrNotAuthenticated
	}

	now := h.clk.Now()
	if !cmd.EndTime.After(now) {
		return nil, domainErrors.ErrInvalidEndTime
	}

	tx, err := h.repo.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.RollbackTx(ctx)
		}
	}()

	listing, err := tx.GetListingForUpdate(ctx, cmd.ListingID)
	if err != nil {
		return nil, err
	}

	if listing.ArtistID != cmd.OwnerID {
		return nil, domainErrors.ErrNotListingOwner
	}

	if listing.Status == auction.StatusAuction {
		return nil, domainErrors.ErrAlreadyInAuction
	}

	if err := listing.StartAuction(cmd.EndTime, cmd.ReservePrice, now); err != nil {
		return nil, domainErrors.ErrAlreadyInAuction
	}

	if err := tx.UpdateListing(ctx, listing); err != nil {
		return nil, err
	}

	if err := tx.CommitTx(ctx); err != nil {
		return nil, err
	}
	committed = true

	if err := h.cache.InvalidateActiveAuctions(ctx); err != nil {
		h.log.Warn("Failed to invalidate auctions feed", "error", err)
	}

	h.log.Info("Auction started",
		"listing_id", listing.ID,
		"artist_id", listing.ArtistID,
		"end_time", cmd.EndTime,
	)

	return &StartAuctionResponse{
		ListingID:      listing.ID,
		AuctionEndTime: cmd.EndTime.UnixMilli(),
	}, nil
}
