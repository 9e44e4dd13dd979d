package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gallerio/auction-service/internal/domain/auction"
	"github.com/gallerio/auction-service/internal/infrastructure/monitoring"
	"github.com/gallerio/auction-service/internal/pkg/logger"
)

const activeAuctionsKey = "auctions:active"

// Cache serves the active-auctions feed and coordinates settlement arming
// across processes. Bid accept/reject decisions never read from here.
type Cache struct {
	client *redis.Client
	logger *logger.Logger
}

func NewCache(conn *Connection, log *logger.Logger) *Cache {
	client := monitoring.InstrumentRedisClient(conn.GetClient())

	return &Cache{
		client: client,
		logger: log,
	}
}

func (c *Cache) GetActiveAuctions(ctx context.Context) ([]*auction.Listing, bool, error) {
	data, err := c.client.Get(ctx, activeAuctionsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var listings []*auction.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, false, err
	}

	return listings, true, nil
}

func (c *Cache) SetActiveAuctions(ctx context.Context, listings []*auction.Listing, ttl time.Duration) error {
	data, err := json.Marshal(listings)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, activeAuctionsKey, data, ttl).Err()
}

func (c *Cache) InvalidateActiveAuctions(ctx context.Context) error {
	return c.client.Del(ctx, activeAuctionsKey).Err()
}

func (c *Cache) MarkSettlementArmed(ctx context.Context, listingID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("settle:armed:%s", listingID)
	return c.client.SetNX(ctx, key, "1", ttl).Result()
}

func (c *Cache) ClearSettlementArmed(ctx context.Context, listingID string) error {
	key := fmt.Sprintf("settle:armed:%s", listingID)
	return c.client.Del(ctx, key).Err()
}

func (c *Cache) AcquireSettlementLock(ctx context.Context, listingID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("settle:lock:%s", listingID)
	return c.client.SetNX(ctx, key, "1", ttl).Result()
}

func (c *Cache) ReleaseSettlementLock(ctx context.Context, listingID string) error {
	key := fmt.Sprintf("settle:lock:%s", listingID)
	return c.client.Del(ctx, key).Err()
}
