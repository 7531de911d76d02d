package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fenixinvest/fenix/Internal/bp"
	"github.com/fenixinvest/fenix/Internal/types"
)

// ============================================================================
// CANDLE CACHE - camada Redis na frente da fonte de candles
// ============================================================================

// CandleCache wraps a bp.CandleSource with a Redis layer. Cache problems
// never fail a request: on any Redis error the source is hit directly.
type CandleCache struct {
	source bp.CandleSource
	rdb    *redis.Client
	ttl    time.Duration
}

// NewCandleCache connects to REDIS_ADDR (default localhost:6379). The TTL
// matches the daily candle cadence.
func NewCandleCache(source bp.CandleSource) *CandleCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	return &CandleCache{
		source: source,
		rdb:    rdb,
		ttl:    15 * time.Minute,
	}
}

func cacheKey(ticker, period, interval string) string {
	return fmt.Sprintf("fenix:candles:%s:%s:%s", ticker, period, interval)
}

// GetTickerCandles serves from Redis when possible, falling back to the
// wrapped source and repopulating the cache on a miss.
func (c *CandleCache) GetTickerCandles(ticker, period, interval string) ([]types.Bar, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	key := cacheKey(ticker, period, interval)

	if cached, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var bars []types.Bar
		if err := json.Unmarshal(cached, &bars); err == nil {
			return bars, nil
		}
		// corrupted entry, drop it and refetch
		c.rdb.Del(ctx, key)
	}

	bars, err := c.source.GetTickerCandles(ticker, period, interval)
	if err != nil || len(bars) == 0 {
		return bars, err
	}

	if payload, err := json.Marshal(bars); err == nil {
		if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			log.Printf("⚠️  Redis indisponível, seguindo sem cache: %v", err)
		}
	}
	return bars, nil
}

// Invalidate drops every cached series for a ticker.
func (c *CandleCache) Invalidate(ticker string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	iter := c.rdb.Scan(ctx, 0, fmt.Sprintf("fenix:candles:%s:*", ticker), 100).Iterator()
	for iter.Next(ctx) {
		c.rdb.Del(ctx, iter.Val())
	}
}

// Close releases the Redis connection.
func (c *CandleCache) Close() error {
	return c.rdb.Close()
}
