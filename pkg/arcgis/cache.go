package arcgis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"scoutgpt-be/internal/pkg/logger"
)

// CachedClient memoizes layer queries in Redis. GIS layers change rarely,
// and the assistant tends to re-run identical tool calls within a
// conversation. Cache failures degrade to a live query.
type CachedClient struct {
	client *Client
	rdb    *redis.Client
	ttl    time.Duration
	log    logger.ILogger
}

func NewCachedClient(client *Client, rdb *redis.Client, ttl time.Duration, log logger.ILogger) *CachedClient {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedClient{client: client, rdb: rdb, ttl: ttl, log: log}
}

func cacheKey(layer string, opts QueryOptions) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%t|%d", layer, opts.Where, opts.OutFields, opts.ReturnGeometry, opts.MaxRecords)))
	return "arcgis:query:" + hex.EncodeToString(sum[:16])
}

func (c *CachedClient) QueryLayer(ctx context.Context, layer string, opts QueryOptions) (*QueryResponse, error) {
	if c.rdb == nil {
		return c.client.QueryLayer(ctx, layer, opts)
	}

	key := cacheKey(layer, opts)
	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached QueryResponse
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	resp, err := c.client.QueryLayer(ctx, layer, opts)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(resp); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil && c.log != nil {
			c.log.Warn("arcgis", "failed to cache layer query", map[string]interface{}{
				"layer": layer,
				"error": err.Error(),
			})
		}
	}

	return resp, nil
}

func (c *CachedClient) ParcelByAddress(ctx context.Context, address, city string) (*Feature, error) {
	return c.client.ParcelByAddress(ctx, address, city)
}

func (c *CachedClient) ZoningByParcelID(ctx context.Context, parcelID string) (*Feature, error) {
	return c.client.ZoningByParcelID(ctx, parcelID)
}
