package ports

import (
	"context"
	"time"

	"github.com/gallerio/auction-service/internal/domain/auction"
)

// ListingFilter narrows GetListings. Zero values mean "no filter".
type ListingFilter struct {
	Status   auction.ListingStatus
	ArtistID string
	Category string
	Limit    int
}

// AuctionRepository is the single mutation path into the listing store, the
// bid ledger and orders. BeginTx returns a transaction-bound repository whose
// mutations become visible atomically at CommitTx; conflicting transactions
// on the same listing serialize against each other.
type AuctionRepository interface {
	GetListingByID(ctx context.Context, id string) (*auction.Listing, error)
	// GetListingForUpdate locks the listing row for the duration of the
	// transaction. Only valid on a transaction-bound repository.
	GetListingForUpdate(ctx context.Context, id string) (*auction.Listing, error)
	CreateListing(ctx context.Context, listing *auction.Listing) error
	UpdateListing(ctx context.Context, listing *auction.Listing) error
	DeleteListing(ctx context.Context, id string) error
	GetListings(ctx context.Context, filter ListingFilter) ([]*auction.Listing, error)
	GetActiveAuctions(ctx context.Context, now time.Time, limit int) ([]*auction.Listing, error)
	GetExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]*auction.Listing, error)
	IncrementViews(ctx context.Context, id string) error

	GetBidsByListingID(ctx context.Context, listingID string) ([]*auction.Bid, error)
	GetBidsByBidderID(ctx context.Context, bidderID string) ([]*auction.BidWithListing, error)
	GetWinningBid(ctx context.Context, listingID string) (*auction.Bid, error)
	ClearWinningBids(ctx context.Context, listingID string) error
	CreateBid(ctx context.Context, bid *auction.Bid) error
	DeleteBidsByListingID(ctx context.Context, listingID string) error

	CreateOrder(ctx context.Context, order *auction.Order) error

	BeginTx(ctx context.Context) (AuctionRepository, error)
	CommitTx(ctx context.Context) error
	RollbackTx(ctx context.Context) error
}
