package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AdithaBuwaneka/fashion-mart-backend/internal/config"
)

// Key prefixes
const (
	PaymentConfirmPrefix = "payment:confirm:"
	DashboardStatsKey    = "dashboard:stats"
	LowStockAlertPrefix  = "stock:alerted:"
)

// Client wraps the Redis client with application-specific methods
type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks the connection to Redis
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// AcquirePaymentConfirm takes the idempotency guard for a payment-intent id.
// The first caller gets true; replays of the same confirmation (internal
// confirm and provider webhook race here) get false.
func (c *Client) AcquirePaymentConfirm(ctx context.Context, intentID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, PaymentConfirmPrefix+intentID, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

// ReleasePaymentConfirm drops the guard so a failed confirmation can retry
func (c *Client) ReleasePaymentConfirm(ctx context.Context, intentID string) error {
	return c.rdb.Del(ctx, PaymentConfirmPrefix+intentID).Err()
}

// GetCachedStats loads cached dashboard stats into dest. Returns false on
// cache miss.
func (c *Client) GetCachedStats(ctx context.Context, dest interface{}) (bool, error) {
	data, err := c.rdb.Get(ctx, DashboardStatsKey).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetCachedStats stores dashboard stats with a TTL
func (c *Client) SetCachedStats(ctx context.Context, stats interface{}, ttl time.Duration) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, DashboardStatsKey, data, ttl).Err()
}

// MarkLowStockAlerted dedupes low-stock notifications per stock row. Returns
// true if this crossing has not been alerted yet.
func (c *Client) MarkLowStockAlerted(ctx context.Context, stockID string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, LowStockAlertPrefix+stockID, "1", ttl).Result()
}

// ClearLowStockAlert resets the dedupe marker once a stock row is refilled
func (c *Client) ClearLowStockAlert(ctx context.Context, stockID string) error {
	return c.rdb.Del(ctx, LowStockAlertPrefix+stockID).Err()
}
