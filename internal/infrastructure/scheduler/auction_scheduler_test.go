package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
	"github.com/shopspring/decimal"

	"github.com/gallerio/auction-service/internal/application/ports"
	"github.com/gallerio/auction-service/internal/domain/auction"
	"github.com/gallerio/auction-service/internal/pkg/clock"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingSettler struct {
	mu      sync.Mutex
	settled []string
	outcome auction.SettlementOutcome
	err     error
}

func (s *recordingSettler) SettleAuction(ctx context.Context, listingID string) (auction.SettlementOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return auction.OutcomeSkipped, s.err
	}
	s.settled = append(s.settled, listingID)
	return s.outcome, nil
}

func (s *recordingSettler) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.settled...)
}

// expiredRepo serves only the expired-auctions query the sweep needs.
type expiredRepo struct {
	ports.AuctionRepository
	expired []*auction.Listing
}

func (r *expiredRepo) GetExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]*auction.Listing, error) {
	return r.expired, nil
}

func newTestScheduler(t *testing.T, repo ports.AuctionRepository) (*AuctionScheduler, *recordingSettler, *clock.MockClock) {
	t.Helper()
	settler := &recordingSettler{outcome: auction.OutcomeSold}
	clk := clock.NewMockClock(testNow)
	s := NewAuctionScheduler(repo, settler, clk, logger.NewLogger(), time.Minute)
	return s, settler, clk
}

func TestArmFiresAtEndTime(t *testing.T) {
	s, settler, clk := newTestScheduler(t, &expiredRepo{})

	s.Arm("listing-1", testNow.Add(time.Hour))
	check.Equal(t, 1, s.ArmedCount())

	clk.Advance(30 * time.Minute)
	check.Equal(t, 0, len(settler.calls()))

	clk.Advance(30 * time.Minute)
	check.Equal(t, []string{"listing-1"}, settler.calls())
	check.Equal(t, 0, s.ArmedCount())
}

func TestArmIsIdempotentForSameEndTime(t *testing.T) {
	s, settler, clk := newTestScheduler(t, &expiredRepo{})
	endTime := testNow.Add(time.Hour)

	s.Arm("listing-1", endTime)
	s.Arm("listing-1", endTime)
	s.Arm("listing-1", endTime)
	check.Equal(t, 1, s.ArmedCount())

	clk.Advance(2 * time.Hour)
	check.Equal(t, []string{"listing-1"}, settler.calls())
}

func TestArmReplacesTimerOnNewEndTime(t *testing.T) {
	s, settler, clk := newTestScheduler(t, &expiredRepo{})

	s.Arm("listing-1", testNow.Add(time.Hour))
	s.Arm("listing-1", testNow.Add(3*time.Hour))
	check.Equal(t, 1, s.ArmedCount())

	// Original deadline passes without firing.
	clk.Advance(time.Hour)
	check.Equal(t, 0, len(settler.calls()))

	clk.Advance(2 * time.Hour)
	check.Equal(t, []string{"listing-1"}, settler.calls())
}

func TestDisarmCancelsTimer(t *testing.T) {
	s, settler, clk := newTestScheduler(t, &expiredRepo{})

	s.Arm("listing-1", testNow.Add(time.Hour))
	s.Disarm("listing-1")
	check.Equal(t, 0, s.ArmedCount())

	clk.Advance(2 * time.Hour)
	check.Equal(t, 0, len(settler.calls()))
}

func TestSweepSettlesExpiredAuctions(t *testing.T) {
	first, err := auction.NewListing("listing-1", "artist-1", "First", decimal.NewFromInt(100), testNow.Add(-2*time.Hour))
	check.NoError(t, err)
	check.NoError(t, first.StartAuction(testNow.Add(-time.Hour), decimal.NullDecimal{}, testNow.Add(-2*time.Hour)))

	second, err := auction.NewListing("listing-2", "artist-2", "Second", decimal.NewFromInt(100), testNow.Add(-2*time.Hour))
	check.NoError(t, err)
	check.NoError(t, second.StartAuction(testNow.Add(-time.Minute), decimal.NullDecimal{}, testNow.Add(-2*time.Hour)))

	repo := &expiredRepo{expired: []*auction.Listing{first, second}}
	s, settler, _ := newTestScheduler(t, repo)

	// A leftover timer for an expired auction is dropped once the sweep
	// settles it.
	s.Arm("listing-2", testNow.Add(time.Hour))

	s.Sweep(context.Background())

	check.Equal(t, []string{"listing-1", "listing-2"}, settler.calls())
	check.Equal(t, 0, s.ArmedCount())
}

func TestSweepKeepsTimersWhenSettlementFails(t *testing.T) {
	listing, err := auction.NewListing("listing-1", "artist-1", "First", decimal.NewFromInt(100), testNow.Add(-2*time.Hour))
	check.NoError(t, err)
	check.NoError(t, listing.StartAuction(testNow.Add(-time.Hour), decimal.NullDecimal{}, testNow.Add(-2*time.Hour)))

	repo := &expiredRepo{expired: []*auction.Listing{listing}}
	s, settler, _ := newTestScheduler(t, repo)
	settler.err = errors.New("store unavailable")

	s.Arm("listing-1", testNow.Add(time.Hour))
	s.Sweep(context.Background())

	// The failed listing stays armed for the next sweep.
	check.Equal(t, 1, s.ArmedCount())
	check.Equal(t, 0, len(settler.calls()))
}
