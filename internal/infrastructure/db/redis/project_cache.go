package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/project-registry/internal/core/domain"
	"github.com/99minutos/project-registry/internal/core/ports"
	"github.com/99minutos/project-registry/internal/metrics"
)

const (
	projectGenKey        = "projects:gen"
	projectListKeyPrefix = "projects:list:"
)

// ProjectCache stores the full project list as one JSON value under
// projects:list:<gen>. Invalidate bumps projects:gen with INCR; SetList
// writes under WATCH on that counter, so a list read before a write is
// discarded instead of cached. Superseded generations expire with the TTL.
type ProjectCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.ProjectCache = (*ProjectCache)(nil)

func NewProjectCache(client *redis.Client, ttl time.Duration) *ProjectCache {
	return &ProjectCache{client: client, ttl: ttl}
}

func listKey(gen int64) string {
	return projectListKeyPrefix + strconv.FormatInt(gen, 10)
}

// generation reads the counter through any redis.Cmdable; a missing key is 0.
func generation(ctx context.Context, c redis.Cmdable) (int64, error) {
	gen, err := c.Get(ctx, projectGenKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *ProjectCache) GetList(ctx context.Context) ([]*domain.Project, int64, bool, error) {
	gen, err := generation(ctx, c.client)
	if err != nil {
		metrics.ProjectCacheTotal.WithLabelValues("error").Inc()
		return nil, 0, false, fmt.Errorf("cache generation: %w", err)
	}

	raw, err := c.client.Get(ctx, listKey(gen)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.ProjectCacheTotal.WithLabelValues("miss").Inc()
		return nil, gen, false, nil
	}
	if err != nil {
		metrics.ProjectCacheTotal.WithLabelValues("error").Inc()
		return nil, 0, false, fmt.Errorf("cache get: %w", err)
	}

	var projects []*domain.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		metrics.ProjectCacheTotal.WithLabelValues("error").Inc()
		return nil, 0, false, fmt.Errorf("cache decode: %w", err)
	}
	metrics.ProjectCacheTotal.WithLabelValues("hit").Inc()
	return projects, gen, true, nil
}

// SetList is a silent no-op when the generation moved past gen, either
// before the WATCH or between WATCH and EXEC.
func (c *ProjectCache) SetList(ctx context.Context, gen int64, projects []*domain.Project) error {
	if projects == nil {
		projects = []*domain.Project{}
	}
	raw, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			metrics.ProjectCacheTotal.WithLabelValues("stale").Inc()
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, listKey(gen), raw, c.ttl)
			return nil
		})
		return err
	}, projectGenKey)
	if errors.Is(err, redis.TxFailedErr) {
		metrics.ProjectCacheTotal.WithLabelValues("stale").Inc()
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *ProjectCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, projectGenKey).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}
