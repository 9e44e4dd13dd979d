package auction

import (
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/gallerio/auction-service/internal/domain/errors"
)

// BiddingService holds the accept/reject rules for bids. The caller is
// responsible for running ValidateBid against authoritative state inside the
// same transaction that commits the bid.
type BiddingService struct{}

func NewBiddingService() *BiddingService {
	return &BiddingService{}
}

func (s *BiddingService) ValidateBid(listing *Listing, bidderID string, amount decimal.Decimal, now time.Time) error {
	if bidderID == "" {
		return domainErrors.ErrNotAuthenticated
	}

	if !amount.IsPositive() {
		return domainErrors.ErrInvalidAmount
	}

	if listing == nil {
		return domainErrors.ErrListingNotFound
	}

	if !listing.IsAuction || listing.Status != StatusAuction {
		return domainErrors.ErrNotInAuction
	}

	if listing.AuctionEnded(now) {
		return domainErrors.ErrAuctionEnded
	}

	if amount.LessThanOrEqual(listing.MinimumOverbid()) {
		return domainErrors.ErrBidTooLow
	}

	if listing.ArtistID == bidderID {
		return domainErrors.ErrSelfBid
	}

	return nil
}

type SettlementOutcome string

const (
	// OutcomeSkipped means the listing was gone or no longer in auction mode,
	// typically because settlement already ran.
	OutcomeSkipped SettlementOutcome = "skipped"
	OutcomeSold    SettlementOutcome = "sold"
	OutcomeNotMet  SettlementOutcome = "reserve_not_met"
	OutcomeNoBids  SettlementOutcome = "no_bids"
)

// DecideSettlement classifies the terminal state for a listing given its
// winning bid (nil when the auction received none).
func (s *BiddingService) DecideSettlement(listing *Listing, winning *Bid) SettlementOutcome {
	if listing == nil || !listing.IsAuction || listing.Status != StatusAuction {
		return OutcomeSkipped
	}

	if winning == nil {
		return OutcomeNoBids
	}

	if winning.Amount.GreaterThanOrEqual(listing.ReserveOrZero()) {
		return OutcomeSold
	}

	return OutcomeNotMet
}
