package auction

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	StatusAvailable ListingStatus = "available"
	StatusAuction   ListingStatus = "auction"
	StatusSold      ListingStatus = "sold"
	StatusReserved  ListingStatus = "reserved"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusAuction, StatusSold, StatusReserved:
		return true
	}
	return false
}

// Listing is an artwork record, optionally operating in auction mode.
// While Status == StatusAuction, CurrentBid mirrors the amount of the single
// winning ledger entry and BidCount counts accepted bids.
type Listing struct {
	ID             string
	ArtistID       string
	Title          string
	Description    string
	Medium         string
	Year           int
	Category       string
	Price          decimal.Decimal
	Status         ListingStatus
	IsAuction      bool
	ReservePrice   decimal.NullDecimal
	CurrentBid     decimal.NullDecimal
	BidCount       int
	AuctionEndTime *time.Time
	Views          int
	CreatedAt      time.Time
}

func NewListing(id, artistID, title string, price decimal.Decimal, now time.Time) (*Listing, error) {
	if id == "" {
		return nil, errors.New("listing id cannot be empty")
	}

	if artistID == "" {
		return nil, errors.New("artist id cannot be empty")
	}

	if title == "" {
		return nil, errors.New("listing title cannot be empty")
	}

	if price.IsNegative() {
		return nil, errors.New("price cannot be negative")
	}

	return &Listing{
		ID:        id,
		ArtistID:  artistID,
		Title:     title,
		Price:     price,
		Status:    StatusAvailable,
		CreatedAt: now,
	}, nil
}

// StartAuction flips an available listing into auction mode. The current-bid
// cache is seeded from the reserve price so the first overbid must clear it.
func (l *Listing) StartAuction(endTime time.Time, reserve decimal.NullDecimal, now time.Time) error {
	if l.Status == StatusAuction {
		return errors.New("listing is already in auction")
	}

	if l.Status == StatusSold {
		return errors.New("sold listing cannot be auctioned")
	}

	if !endTime.After(now) {
		return errors.New("auction end time must be in the future")
	}

	l.Status = StatusAuction
	l.IsAuction = true
	l.AuctionEndTime = &endTime
	l.ReservePrice = reserve
	l.CurrentBid = reserve
	l.BidCount = 0
	return nil
}

// InAuction reports whether the listing accepts bids at the given instant.
func (l *Listing) InAuction(now time.Time) bool {
	if !l.IsAuction || l.Status != StatusAuction {
		return false
	}
	return l.AuctionEndTime == nil || now.Before(*l.AuctionEndTime)
}

// AuctionEnded reports whether the end time has passed, regardless of whether
// settlement has run yet.
func (l *Listing) AuctionEnded(now time.Time) bool {
	return l.AuctionEndTime != nil && !now.Before(*l.AuctionEndTime)
}

// MinimumOverbid is the price floor for the next bid: the larger of the cached
// current bid and the reserve price, zero when neither is set. A new bid must
// strictly exceed it.
func (l *Listing) MinimumOverbid() decimal.Decimal {
	floor := decimal.Zero
	if l.CurrentBid.Valid && l.CurrentBid.Decimal.GreaterThan(floor) {
		floor = l.CurrentBid.Decimal
	}
	if l.ReservePrice.Valid && l.ReservePrice.Decimal.GreaterThan(floor) {
		floor = l.ReservePrice.Decimal
	}
	return floor
}

// AcceptBid bumps the listing's bid cache after a bid row has been committed
// as the new winner.
func (l *Listing) AcceptBid(amount decimal.Decimal) {
	l.CurrentBid = decimal.NewNullDecimal(amount)
	l.BidCount++
}

// MarkSold is the terminal transition for a successful auction.
func (l *Listing) MarkSold() {
	l.Status = StatusSold
}

// RevertToAvailable undoes auction mode after a failed auction: no bids, or
// reserve not met. All auction-only fields are cleared.
func (l *Listing) RevertToAvailable() {
	l.Status = StatusAvailable
	l.IsAuction = false
	l.AuctionEndTime = nil
	l.CurrentBid = decimal.NullDecimal{}
}

func (l *Listing) ReserveOrZero() decimal.Decimal {
	if l.ReservePrice.Valid {
		return l.ReservePrice.Decimal
	}
	return decimal.Zero
}
