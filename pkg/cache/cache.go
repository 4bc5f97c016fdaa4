// Package cache provides a Redis-backed cache for validation reports,
// keyed by a content hash of the workflow so edits invalidate naturally.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dukex/flowlint/pkg/models"
)

// ErrMiss is returned when no cached report exists for the key.
var ErrMiss = errors.New("cache miss")

const keyPrefix = "flowlint:report:"

// ReportCache caches validation reports in Redis.
type ReportCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewReportCache connects to Redis using a redis:// URL and verifies the
// connection with a ping.
func NewReportCache(ctx context.Context, logger *slog.Logger, redisURL string, ttl time.Duration) (*ReportCache, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", options.Addr, "db", options.DB)

	return &ReportCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Get returns the cached report for the workflow hash, or ErrMiss.
func (c *ReportCache) Get(ctx context.Context, hash string) (*models.Report, error) {
	data, err := c.client.Get(ctx, keyPrefix+hash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached report: %w", err)
	}

	return &report, nil
}

// Set stores the report under the workflow hash with the configured TTL.
func (c *ReportCache) Set(ctx context.Context, hash string, report *models.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+hash, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}

	return nil
}

// Invalidate drops the cached report for the workflow hash.
func (c *ReportCache) Invalidate(ctx context.Context, hash string) error {
	if err := c.client.Del(ctx, keyPrefix+hash).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached report: %w", err)
	}

	return nil
}

// HealthCheck verifies the Redis connection is healthy.
func (c *ReportCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (c *ReportCache) Close() error {
	return c.client.Close()
}
