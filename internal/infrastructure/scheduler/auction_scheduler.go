package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/gallerio/auction-service/internal/application/ports"
	"github.com/gallerio/auction-service/internal/domain/auction"
	"github.com/gallerio/auction-service/internal/infrastructure/monitoring"
	"github.com/gallerio/auction-service/internal/pkg/clock"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

const sweepBatchSize = 100

// Settler is the deferred action the scheduler guarantees to run at or after
// each auction's end time.
type Settler interface {
	SettleAuction(ctx context.Context, listingID string) (auction.SettlementOutcome, error)
}

// AuctionScheduler keeps at most one outstanding settlement timer per listing
// and runs a periodic sweep as the safety net for auctions that never armed a
// timer: ones with no bids inside the lookahead window, and timers lost to a
// restart.
type AuctionScheduler struct {
	repo          ports.AuctionRepository
	settler       Settler
	clk           clock.Clock
	logger        *logger.Logger
	sweepInterval time.Duration

	mu     sync.Mutex
	timers map[string]*armedTimer

	stopChan chan struct{}
	stopOnce sync.Once
}

type armedTimer struct {
	endTime time.Time
	timer   clock.Timer
}

func NewAuctionScheduler(
	repo ports.AuctionRepository,
	settler Settler,
	clk clock.Clock,
	logger *logger.Logger,
	sweepInterval time.Duration,
) *AuctionScheduler {
	return &AuctionScheduler{
		repo:          repo,
		settler:       settler,
		clk:           clk,
		logger:        logger,
		sweepInterval: sweepInterval,
		timers:        make(map[string]*armedTimer),
		stopChan:      make(chan struct{}),
	}
}

func (s *AuctionScheduler) Start(ctx context.Context) {
	s.logger.Info("Starting auction scheduler", "sweep_interval", s.sweepInterval.String())

	s.Sweep(ctx)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Auction scheduler stopped")
			return
		case <-s.stopChan:
			s.logger.Info("Auction scheduler stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *AuctionScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// Arm schedules settlement of the listing for its end time. Keyed by listing
// id: re-arming for the same end time is a no-op, a different end time
// replaces the previous timer. Never produces two settlements.
func (s *AuctionScheduler) Arm(listingID string, endTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[listingID]; ok {
		if existing.endTime.Equal(endTime) {
			return
		}
		existing.timer.Stop()
	}

	delay := s.clk.Until(endTime)
	if delay < 0 {
		delay = 0
	}

	s.timers[listingID] = &armedTimer{
		endTime: endTime,
		timer:   s.clk.AfterFunc(delay, func() { s.fire(listingID) }),
	}

	monitoring.UpdateArmedSettlements(len(s.timers))
}

// Disarm cancels any outstanding timer for the listing.
func (s *AuctionScheduler) Disarm(listingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[listingID]; ok {
		existing.timer.Stop()
		delete(s.timers, listingID)
		monitoring.UpdateArmedSettlements(len(s.timers))
	}
}

// ArmedCount reports the number of outstanding settlement timers.
func (s *AuctionScheduler) ArmedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *AuctionScheduler) fire(listingID string) {
	s.mu.Lock()
	delete(s.timers, listingID)
	monitoring.UpdateArmedSettlements(len(s.timers))
	s.mu.Unlock()

	outcome, err := s.settler.SettleAuction(context.Background(), listingID)
	if err != nil {
		// Best effort; the sweep retries expired auctions until one run
		// commits the terminal transition.
		s.logger.Error("Scheduled settlement failed", "error", err, "listing_id", listingID)
		return
	}
	s.recordOutcome(listingID, outcome)
}

// Sweep settles every auction whose end time has passed, regardless of
// whether a timer was ever armed for it.
func (s *AuctionScheduler) Sweep(ctx context.Context) {
	expired, err := s.repo.GetExpiredAuctions(ctx, s.clk.Now(), sweepBatchSize)
	if err != nil {
		s.logger.Error("Settlement sweep query failed", "error", err)
		return
	}

	for _, listing := range expired {
		outcome, err := s.settler.SettleAuction(ctx, listing.ID)
		if err != nil {
			s.logger.Error("Sweep settlement failed", "error", err, "listing_id", listing.ID)
			continue
		}
		s.recordOutcome(listing.ID, outcome)
		s.Disarm(listing.ID)
	}

	if len(expired) > 0 {
		s.logger.Info("Settlement sweep completed", "settled", len(expired))
	}
}

func (s *AuctionScheduler) recordOutcome(listingID string, outcome auction.SettlementOutcome) {
	if outcome == auction.OutcomeSkipped {
		return
	}
	monitoring.NewSettlementMetrics(listingID).RecordOutcome(string(outcome))
}
