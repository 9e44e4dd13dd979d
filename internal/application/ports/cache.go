package ports

import (
	"context"
	"time"

	"github.com/gallerio/auction-service/internal/domain/auction"
)

// Cache is a read-side and coordination cache. It is never consulted for the
// accept/reject decision inside a bid transaction.
type Cache interface {
	GetActiveAuctions(ctx context.Context) ([]*auction.Listing, bool, error)
	SetActiveAuctions(ctx context.Context, listings []*auction.Listing, ttl time.Duration) error
	InvalidateActiveAuctions(ctx context.Context) error

	// MarkSettlementArmed records that a settlement timer exists for the
	// listing. Returns false when one was already recorded, making re-arming
	// an upsert rather than an additional task.
	MarkSettlementArmed(ctx context.Context, listingID string, ttl time.Duration) (bool, error)
	ClearSettlementArmed(ctx context.Context, listingID string) error

	AcquireSettlementLock(ctx context.Context, listingID string, ttl time.Duration) (bool, error)
	ReleaseSettlementLock(ctx context.Context, listingID string) error
}
