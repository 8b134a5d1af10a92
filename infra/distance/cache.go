package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	redis "github.com/redis/go-redis/v9"

	"github.com/kilianp07/fieldroute/core/geo"
	"github.com/kilianp07/fieldroute/core/logger"
)

const cacheKeyPrefix = "fieldroute:matrix:"

// RedisCache stores duration matrices in Redis keyed by the ordered point
// list. Redis failures are logged and the request goes to the next provider.
type RedisCache struct {
	rdb  *redis.Client
	next geo.MatrixProvider
	ttl  time.Duration
	log  logger.Logger
}

// NewRedisCache connects to the Redis server at url (redis://host:port/db).
func NewRedisCache(url string, next geo.MatrixProvider, ttl time.Duration, log logger.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisCacheWithClient(redis.NewClient(opt), next, ttl, log), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(rdb *redis.Client, next geo.MatrixProvider, ttl time.Duration, log logger.Logger) *RedisCache {
	if log == nil {
		log = nopLogger{}
	}
	return &RedisCache{rdb: rdb, next: next, ttl: ttl, log: log}
}

// Durations implements geo.MatrixProvider.
func (c *RedisCache) Durations(ctx context.Context, points []geo.Point) ([][]int, error) {
	key := cacheKey(points)
	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var m [][]int
		if jerr := json.Unmarshal(data, &m); jerr == nil && geo.IsSquare(m, len(points)) {
			return m, nil
		}
		c.log.Warnf("discarding malformed cache entry %s", key)
	case err != redis.Nil:
		c.log.Warnf("matrix cache get: %v", err)
	}

	m, err := c.next.Durations(ctx, points)
	if err != nil {
		return nil, err
	}
	if b, merr := json.Marshal(m); merr == nil {
		if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.log.Warnf("matrix cache set: %v", serr)
		}
	}
	return m, nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error { return c.rdb.Close() }

// cacheKey hashes coordinates rounded to about one meter.
func cacheKey(points []geo.Point) string {
	var b strings.Builder
	for _, p := range points {
		b.WriteString(strconv.FormatFloat(p.Lat, 'f', 5, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(p.Lon, 'f', 5, 64))
		b.WriteByte(';')
	}
	return fmt.Sprintf("%s%d:%016x", cacheKeyPrefix, len(points), xxhash.Sum64String(b.String()))
}
