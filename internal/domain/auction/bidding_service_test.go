package auction

import (
	"errors"
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	domainErrors "github.com/gallerio/auction-service/internal/domain/errors"
)

func newAuctionListing(t *testing.T, reserve decimal.NullDecimal) *Listing {
	t.Helper()
	listing := newTestListing(t)
	check.Nil(t, listing.StartAuction(testNow.Add(24*time.Hour), reserve, testNow))
	return listing
}

func TestValidateBidAccepts(t *testing.T) {
	svc := NewBiddingService()
	listing := newAuctionListing(t, decimal.NewNullDecimal(decimal.NewFromInt(100)))

	err := svc.ValidateBid(listing, "bidder-1", decimal.NewFromInt(150), testNow)
	check.NoError(t, err)

	// The smallest strict overbid clears the floor.
	err = svc.ValidateBid(listing, "bidder-1", decimal.RequireFromString("100.01"), testNow)
	check.NoError(t, err)
}

func TestValidateBidRejections(t *testing.T) {
	svc := NewBiddingService()
	amount := decimal.NewFromInt(150)

	t.Run("not authenticated", func(t *testing.T) {
		listing := newAuctionListing(t, decimal.NullDecimal{})
		err := svc.ValidateBid(listing, "", amount, testNow)
		check.True(t, errors.Is(err, domainErrors.ErrNotAuthenticated))
	})

	t.Run("invalid amount", func(t *testing.T) {
		listing := newAuctionListing(t, decimal.NullDecimal{})
		err := svc.ValidateBid(listing, "bidder-1", decimal.Zero, testNow)
		check.True(t, errors.Is(err, domainErrors.ErrInvalidAmount))

		err = svc.ValidateBid(listing, "bidder-1", decimal.NewFromInt(-5), testNow)
		check.True(t, errors.Is(err, domainErrors.ErrInvalidAmount))
	})

	t.Run("missing listing", func(t *testing.T) {
		err := svc.ValidateBid(nil, "bidder-1", amount, testNow)
		check.True(t, errors.Is(err, domainErrors.ErrListingNotFound))
	})

	t.Run("not in auction", func(t *testing.T) {
		listing := newTestListing(t)
		err := svc.ValidateBid(listing, "bidder-1", amount, testNow)
		check.True(t, errors.Is(err, domainErrors.ErrNotInAuction))
	})

	t.Run("auction ended", func(t *testing.T) {
		listing := newAuctionListing(t, decimal.NullDecimal{})
		err := svc.ValidateBid(listing, "bidder-1", amount, testNow.Add(25*time.Hour))
		check.True(t, errors.Is(err, domainErrors.ErrAuctionEnded))

		// The end instant itself no longer accepts bids.
		err = svc.ValidateBid(listing, "bidder-1", amount, *listing.AuctionEndTime)
		check.True(t, errors.Is(err, domainErrors.ErrAuctionEnded))
	})

	t.Run("bid too low", func(t *testing.T) {
		listing := newAuctionListing(t, decimal.NewNullDecimal(decimal.NewFromInt(200)))

		err := svc.ValidateBid(listing, "bidder-1", decimal.NewFromInt(200), testNow)
		check.True(t, errors.Is(err, domainErrors.ErrBidTooLow))

		err = svc.ValidateBid(listing, "bidder-1", decimal.NewFromInt(199), testNow)
		check.True(t, errors.Is(err, domainErrors.ErrBidTooLow))
	})

	t.Run("bid too low against current bid", func(t *testing.T) {
		listing := newAuctionListing(t, decimal.NullDecimal{})
		listing.AcceptBid(decimal.NewFromInt(120))

		err := svc.ValidateBid(listing, "bidder-1", decimal.NewFromInt(120), testNow)
		check.True(t, errors.Is(err, domainErrors.ErrBidTooLow))

		check.NoError(t, svc.ValidateBid(listing, "bidder-1", decimal.NewFromInt(121), testNow))
	})

	t.Run("self bid", func(t *testing.T) {
		listing := newAuctionListing(t, decimal.NullDecimal{})
		err := svc.ValidateBid(listing, listing.ArtistID, amount, testNow)
		check.True(t, errors.Is(err, domainErrors.ErrSelfBid))
	})

	t.Run("amount checked before ownership", func(t *testing.T) {
		listing := newAuctionListing(t, decimal.NewNullDecimal(decimal.NewFromInt(500)))
		err := svc.ValidateBid(listing, listing.ArtistID, decimal.NewFromInt(100), testNow)
		check.True(t, errors.Is(err, domainErrors.ErrBidTooLow))
	})
}

func TestDecideSettlement(t *testing.T) {
	svc := NewBiddingService()

	t.Run("sold when winning meets reserve", func(t *testing.T) {
		listing := newAuctionListing(t, decimal.NewNullDecimal(decimal.NewFromInt(100)))
		winning := &Bid{Amount: decimal.NewFromInt(100)}
		check.Equal(t, OutcomeSold, svc.DecideSettlement(listing, winning))
	})

	t.Run("sold without reserve", func(t *testing.T) {
		listing := newAuctionListing(t, decimal.NullDecimal{})
		winning := &Bid{Amount: decimal.NewFromInt(1)}
		check.Equal(t, OutcomeSold, svc.DecideSettlement(listing, winning))
	})

	t.Run("reserve not met", func(t *testing.T) {
		listing := newAuctionListing(t, decimal.NewNullDecimal(decimal.NewFromInt(100)))
		winning := &Bid{Amount: decimal.RequireFromString("99.99")}
		check.Equal(t, OutcomeNotMet, svc.DecideSettlement(listing, winning))
	})

	t.Run("no bids", func(t *testing.T) {
		listing := newAuctionListing(t, decimal.NullDecimal{})
		check.Equal(t, OutcomeNoBids, svc.DecideSettlement(listing, nil))
	})

	t.Run("skipped when not in auction", func(t *testing.T) {
		listing := newTestListing(t)
		check.Equal(t, OutcomeSkipped, svc.DecideSettlement(listing, nil))
		check.Equal(t, OutcomeSkipped, svc.DecideSettlement(nil, nil))
	})
}
