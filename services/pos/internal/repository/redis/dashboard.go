package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kjramos5310/FarmaciasMicroservicios3P/pkg/database"
	"github.com/kjramos5310/FarmaciasMicroservicios3P/services/pos/internal/domain"
)

const dashboardKey = "pos:dashboard"

// DashboardCache implements service.DashboardCache using Redis.
type DashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDashboardCache creates a Redis-backed dashboard cache.
func NewDashboardCache(client *redis.Client, ttl time.Duration) *DashboardCache {
	return &DashboardCache{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the cached dashboard, or nil when nothing is cached.
func (c *DashboardCache) Get(ctx context.Context) (_ *domain.Dashboard, err error) {
	ctx, end := database.TraceCommand(ctx, "GET", dashboardKey)
	defer func() { end(err) }()

	data, err := c.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get dashboard: %w", err)
	}

	var d domain.Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal dashboard: %w", err)
	}
	return &d, nil
}

// Set stores the dashboard for the configured TTL.
func (c *DashboardCache) Set(ctx context.Context, d *domain.Dashboard) (err error) {
	ctx, end := database.TraceCommand(ctx, "SET", dashboardKey)
	defer func() { end(err) }()

	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal dashboard: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set dashboard: %w", err)
	}
	return nil
}
