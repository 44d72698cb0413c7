package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dynamocards-backend/internal/logger"
	"dynamocards-backend/internal/telemetry"
	"dynamocards-backend/utils"

	"github.com/redis/go-redis/v9"
)

// RedisCache keeps split transcripts in Redis, brotli compressed. Entries are
// prefixed with the algorithm so the payload can be decoded without a
// separate lookup.
type RedisCache struct {
	rdb     *redis.Client
	prefix  string
	ttl     time.Duration
	metrics *telemetry.Metrics
}

// NewRedisCache namespaces keys by language and chunk size so a config
// change never serves chunks cut for another layout.
func NewRedisCache(rdb *redis.Client, language string, chunkSize int, ttl time.Duration, metrics *telemetry.Metrics) *RedisCache {
	return &RedisCache{
		rdb:     rdb,
		prefix:  fmt.Sprintf("transcript:%s:%d:", language, chunkSize),
		ttl:     ttl,
		metrics: metrics,
	}
}

func (c *RedisCache) key(videoID string) string {
	return c.prefix + videoID
}

func (c *RedisCache) Get(ctx context.Context, videoID string) ([]Chunk, bool) {
	raw, err := c.rdb.Get(ctx, c.key(videoID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("transcript cache read failed", "video_id", videoID, "error", err)
		}
		c.metrics.RecordCacheLookup(false)
		return nil, false
	}

	chunks, err := decodeChunks(raw)
	if err != nil {
		logger.Warn("dropping unreadable cache entry", "video_id", videoID, "error", err)
		c.rdb.Del(ctx, c.key(videoID))
		c.metrics.RecordCacheLookup(false)
		return nil, false
	}

	c.metrics.RecordCacheLookup(true)
	return chunks, true
}

func (c *RedisCache) Set(ctx context.Context, videoID string, chunks []Chunk) error {
	payload, err := encodeChunks(chunks)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(videoID), payload, c.ttl).Err()
}

// encodeChunks produces "<algorithm>:<bytes>".
func encodeChunks(chunks []Chunk) ([]byte, error) {
	data, err := json.Marshal(chunks)
	if err != nil {
		return nil, fmt.Errorf("marshal chunks: %w", err)
	}
	algorithm := utils.GetBestCompression(data)
	compressed, err := utils.CompressData(data, algorithm)
	if err != nil {
		return nil, err
	}
	return append([]byte(string(algorithm)+":"), compressed...), nil
}

func decodeChunks(raw []byte) ([]Chunk, error) {
	algorithm, body, ok := strings.Cut(string(raw), ":")
	if !ok {
		return nil, errors.New("missing compression prefix")
	}
	data, err := utils.DecompressData([]byte(body), utils.CompressionAlgorithm(algorithm))
	if err != nil {
		return nil, err
	}
	var chunks []Chunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("unmarshal chunks: %w", err)
	}
	return chunks, nil
}
