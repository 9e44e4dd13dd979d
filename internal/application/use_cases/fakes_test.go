package use_cases

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gallerio/auction-service/internal/application/ports"
	"github.com/gallerio/auction-service/internal/domain/auction"
	domainErrors "github.com/gallerio/auction-service/internal/domain/errors"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

// fakeRepo is an in-memory AuctionRepository. BeginTx hands out a staged view
// guarded by a transaction mutex, so committed effects appear atomically and
// concurrent transactions serialize the way the real store does.
type fakeRepo struct {
	mu       sync.Mutex
	listings map[string]*auction.Listing
	bids     map[string]*auction.Bid
	orders   map[string]*auction.Order

	txMu        sync.Mutex
	failCommits int

	activeQueries int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		listings: make(map[string]*auction.Listing),
		bids:     make(map[string]*auction.Bid),
		orders:   make(map[string]*auction.Order),
	}
}

func copyListing(l *auction.Listing) *auction.Listing {
	c := *l
	if l.AuctionEndTime != nil {
		endTime := *l.AuctionEndTime
		c.AuctionEndTime = &endTime
	}
	return &c
}

func copyBid(b *auction.Bid) *auction.Bid {
	c := *b
	return &c
}

func (r *fakeRepo) seed(l *auction.Listing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[l.ID] = copyListing(l)
}

func (r *fakeRepo) listing(id string) *auction.Listing {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyListing(r.listings[id])
}

func (r *fakeRepo) winningBids(listingID string) []*auction.Bid {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auction.Bid
	for _, b := range r.bids {
		if b.ListingID == listingID && b.IsWinning {
			out = append(out, copyBid(b))
		}
	}
	return out
}

func (r *fakeRepo) orderCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *fakeRepo) GetListingByID(ctx context.Context, id string) (*auction.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, domainErrors.ErrListingNotFound
	}
	return copyListing(l), nil
}

func (r *fakeRepo) GetListingForUpdate(ctx context.Context, id string) (*auction.Listing, error) {
	return nil, errors.New("row lock requires a transaction")
}

func (r *fakeRepo) CreateListing(ctx context.Context, listing *auction.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[listing.ID] = copyListing(listing)
	return nil
}

func (r *fakeRepo) UpdateListing(ctx context.Context, listing *auction.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[listing.ID]; !ok {
		return domainErrors.ErrListingNotFound
	}
	r.listings[listing.ID] = copyListing(listing)
	return nil
}

func (r *fakeRepo) DeleteListing(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return domainErrors.ErrListingNotFound
	}
	delete(r.listings, id)
	for bidID, b := range r.bids {
		if b.ListingID == id {
			delete(r.bids, bidID)
		}
	}
	return nil
}

func (r *fakeRepo) GetListings(ctx context.Context, filter ports.ListingFilter) ([]*auction.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auction.Listing
	for _, l := range r.listings {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.ArtistID != "" && l.ArtistID != filter.ArtistID {
			continue
		}
		out = append(out, copyListing(l))
	}
	return out, nil
}

func (r *fakeRepo) GetActiveAuctions(ctx context.Context, now time.Time, limit int) ([]*auction.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activeQueries++
	var out []*auction.Listing
	for _, l := range r.listings {
		if l.Status == auction.StatusAuction && l.AuctionEndTime != nil && l.AuctionEndTime.After(now) {
			out = append(out, copyListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AuctionEndTime.Before(*out[j].AuctionEndTime)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) GetExpiredAuctions(ctx context.Context, now time.Time, limit int) ([]*auction.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auction.Listing
	for _, l := range r.listings {
		if l.Status == auction.StatusAuction && l.AuctionEndTime != nil && !l.AuctionEndTime.After(now) {
			out = append(out, copyListing(l))
		}
	}
	return out, nil
}

func (r *fakeRepo) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.listings[id]; ok {
		l.Views++
	}
	return nil
}

func (r *fakeRepo) GetBidsByListingID(ctx context.Context, listingID string) ([]*auction.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auction.Bid
	for _, b := range r.bids {
		if b.ListingID == listingID {
			out = append(out, copyBid(b))
		}
	}
	return out, nil
}

func (r *fakeRepo) GetBidsByBidderID(ctx context.Context, bidderID string) ([]*auction.BidWithListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*auction.BidWithListing
	for _, b := range r.bids {
		if b.BidderID != bidderID {
			continue
		}
		entry := &auction.BidWithListing{Bid: *copyBid(b)}
		if l, ok := r.listings[b.ListingID]; ok {
			entry.Listing = copyListing(l)
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *fakeRepo) GetWinningBid(ctx context.Context, listingID string) (*auction.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.ListingID == listingID && b.IsWinning {
			return copyBid(b), nil
		}
	}
	return nil, domainErrors.ErrBidNotFound
}

func (r *fakeRepo) ClearWinningBids(ctx context.Context, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bids {
		if b.ListingID == listingID {
			b.IsWinning = false
		}
	}
	return nil
}

func (r *fakeRepo) CreateBid(ctx context.Context, bid *auction.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bids[bid.ID] = copyBid(bid)
	return nil
}

func (r *fakeRepo) DeleteBidsByListingID(ctx context.Context, listingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, b := range r.bids {
		if b.ListingID == listingID {
			delete(r.bids, id)
		}
	}
	return nil
}

func (r *fakeRepo) CreateOrder(ctx context.Context, order *auction.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *order
	r.orders[order.ID] = &c
	return nil
}

func (r *fakeRepo) BeginTx(ctx context.Context) (ports.AuctionRepository, error) {
	r.txMu.Lock()
	return &fakeTx{
		fakeRepo:       r,
		stagedListings: make(map[string]*auction.Listing),
		stagedBids:     make(map[string]*auction.Bid),
		stagedOrders:   make(map[string]*auction.Order),
		clearedWinning: make(map[string]bool),
	}, nil
}

func (r *fakeRepo) CommitTx(ctx context.Context) error {
	return errors.New("no transaction in progress")
}

func (r *fakeRepo) RollbackTx(ctx context.Context) error {
	return errors.New("no transaction in progress")
}

// fakeTx stages writes and applies them atomically on commit.
type fakeTx struct {
	*fakeRepo
	stagedListings map[string]*auction.Listing
	stagedBids     map[string]*auction.Bid
	stagedOrders   map[string]*auction.Order
	clearedWinning map[string]bool
	finished       bool
}

func (tx *fakeTx) GetListingForUpdate(ctx context.Context, id string) (*auction.Listing, error) {
	if staged, ok := tx.stagedListings[id]; ok {
		return copyListing(staged), nil
	}
	return tx.fakeRepo.GetListingByID(ctx, id)
}

func (tx *fakeTx) UpdateListing(ctx context.Context, listing *auction.Listing) error {
	tx.stagedListings[listing.ID] = copyListing(listing)
	return nil
}

func (tx *fakeTx) GetWinningBid(ctx context.Context, listingID string) (*auction.Bid, error) {
	for _, b := range tx.stagedBids {
		if b.ListingID == listingID && b.IsWinning {
			return copyBid(b), nil
		}
	}
	if tx.clearedWinning[listingID] {
		return nil, domainErrors.ErrBidNotFound
	}
	return tx.fakeRepo.GetWinningBid(ctx, listingID)
}

func (tx *fakeTx) ClearWinningBids(ctx context.Context, listingID string) error {
	tx.clearedWinning[listingID] = true
	for _, b := range tx.stagedBids {
		if b.ListingID == listingID {
			b.IsWinning = false
		}
	}
	return nil
}

func (tx *fakeTx) CreateBid(ctx context.Context, bid *auction.Bid) error {
	tx.stagedBids[bid.ID] = copyBid(bid)
	return nil
}

func (tx *fakeTx) CreateOrder(ctx context.Context, order *auction.Order) error {
	c := *order
	tx.stagedOrders[order.ID] = &c
	return nil
}

func (tx *fakeTx) BeginTx(ctx context.Context) (ports.AuctionRepository, error) {
	return nil, errors.New("transaction already in progress")
}

func (tx *fakeTx) CommitTx(ctx context.Context) error {
	if tx.finished {
		return errors.New("transaction already finished")
	}
	tx.finished = true
	defer tx.txMu.Unlock()

	if tx.failCommits > 0 {
		tx.failCommits--
		return errors.New("injected commit failure")
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()

	for listingID := range tx.clearedWinning {
		for _, b := range tx.bids {
			if b.ListingID == listingID {
				b.IsWinning = false
			}
		}
	}
	for id, b := range tx.stagedBids {
		tx.bids[id] = copyBid(b)
	}
	for id, l := range tx.stagedListings {
		tx.listings[id] = copyListing(l)
	}
	for id, o := range tx.stagedOrders {
		c := *o
		tx.orders[id] = &c
	}
	return nil
}

func (tx *fakeTx) RollbackTx(ctx context.Context) error {
	if tx.finished {
		return nil
	}
	tx.finished = true
	tx.txMu.Unlock()
	return nil
}

type fakeCache struct {
	mu            sync.Mutex
	feed          []*auction.Listing
	feedSet       bool
	armed         map[string]bool
	locks         map[string]bool
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		armed: make(map[string]bool),
		locks: make(map[string]bool),
	}
}

func (c *fakeCache) GetActiveAuctions(ctx context.Context) ([]*auction.Listing, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.feedSet {
		return nil, false, nil
	}
	return c.feed, true, nil
}

func (c *fakeCache) SetActiveAuctions(ctx context.Context, listings []*auction.Listing, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feed = listings
	c.feedSet = true
	return nil
}

func (c *fakeCache) InvalidateActiveAuctions(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feed = nil
	c.feedSet = false
	c.invalidations++
	return nil
}

func (c *fakeCache) MarkSettlementArmed(ctx context.Context, listingID string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.armed[listingID] {
		return false, nil
	}
	c.armed[listingID] = true
	return true, nil
}

func (c *fakeCache) ClearSettlementArmed(ctx context.Context, listingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.armed, listingID)
	return nil
}

func (c *fakeCache) AcquireSettlementLock(ctx context.Context, listingID string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locks[listingID] {
		return false, nil
	}
	c.locks[listingID] = true
	return true, nil
}

func (c *fakeCache) ReleaseSettlementLock(ctx context.Context, listingID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, listingID)
	return nil
}

type armCall struct {
	listingID string
	endTime   time.Time
}

type fakeScheduler struct {
	mu      sync.Mutex
	arms    []armCall
	disarms []string
}

func (s *fakeScheduler) Arm(listingID string, endTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.arms = append(s.arms, armCall{listingID: listingID, endTime: endTime})
}

func (s *fakeScheduler) Disarm(listingID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarms = append(s.disarms, listingID)
}

func (s *fakeScheduler) armCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.arms)
}

func seededListing(id, artistID string, reserve decimal.NullDecimal, endTime time.Time, now time.Time) *auction.Listing {
	listing, err := auction.NewListing(id, artistID, "Test Artwork", decimal.NewFromInt(500), now)
	if err != nil {
		panic(err)
	}
	if err := listing.StartAuction(endTime, reserve, now); err != nil {
		panic(err)
	}
	return listing
}

func testLogger() *logger.Logger {
	return logger.NewLogger()
}
