package auction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Bid is one entry in the append-only ledger for a listing. At most one bid
// per listing carries IsWinning at any instant.
type Bid struct {
	ID        string
	ListingID string
	BidderID  string
	Amount    decimal.Decimal
	IsWinning bool
	CreatedAt time.Time
}

func NewBid(id, listingID, bidderID string, amount decimal.Decimal, now time.Time) (*Bid, error) {
	if id == "" {
		return nil, errors.New("bid id cannot be empty")
	}

	if listingID == "" {
		return nil, errors.New("listing id cannot be empty")
	}

	if bidderID == "" {
		return nil, errors.New("bidder id cannot be empty")
	}

	if !amount.IsPositive() {
		return nil, errors.New("bid amount must be positive")
	}

	return &Bid{
		ID:        id,
		ListingID: listingID,
		BidderID:  bidderID,
		Amount:    amount,
		IsWinning: true,
		CreatedAt: now,
	}, nil
}

// BidWithListing pairs a bid with a snapshot of its listing for history views.
// The listing may be nil if it was deleted after the bid was placed.
type BidWithListing struct {
	Bid     Bid
	Listing *Listing
}
