package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"resume-screener/internal/model"
)

// DashboardCache keeps a session's scored resume list in Redis in front of
// MySQL. A short-lived dirty marker set during screen calls keeps readers
// from re-filling the cache with a list that is about to change.
type DashboardCache struct {
	client         *redisv9.Client
	resumesTTL     time.Duration
	dirtyMarkerTTL time.Duration
}

func NewDashboardCache(client *redisv9.Client, resumesTTL, dirtyMarkerTTL time.Duration) *DashboardCache {
	if resumesTTL <= 0 {
		resumesTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &DashboardCache{
		client:         client,
		resumesTTL:     resumesTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *DashboardCache) GetResumes(ctx context.Context, sessionID string) ([]model.Resume, bool, error) {
	key := c.resumesKey(sessionID)
	raw, err := c.client.Get(ctx, key).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get resumes failed: %w", err)
	}

	var resumes []model.Resume
	if err := json.Unmarshal([]byte(raw), &resumes); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached resumes failed: %w", err)
	}
	return resumes, true, nil
}

func (c *DashboardCache) SetResumes(ctx context.Context, sessionID string, resumes []model.Resume) error {
	key := c.resumesKey(sessionID)
	payload, err := json.Marshal(resumes)
	if err != nil {
		return fmt.Errorf("marshal resumes cache failed: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.resumesTTL).Err(); err != nil {
		return fmt.Errorf("redis set resumes failed: %w", err)
	}
	return nil
}

func (c *DashboardCache) DeleteResumes(ctx context.Context, sessionID string) error {
	key := c.resumesKey(sessionID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete resumes failed: %w", err)
	}
	return nil
}

func (c *DashboardCache) MarkDirty(ctx context.Context, sessionID string) error {
	key := c.dirtyKey(sessionID)
	if err := c.client.Set(ctx, key, "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *DashboardCache) IsDirty(ctx context.Context, sessionID string) (bool, error) {
	key := c.dirtyKey(sessionID)
	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *DashboardCache) resumesKey(sessionID string) string {
	return fmt.Sprintf("screening:dashboard:%s", sessionID)
}

func (c *DashboardCache) dirtyKey(sessionID string) string {
	return fmt.Sprintf("screening:dashboard:dirty:%s", sessionID)
}
