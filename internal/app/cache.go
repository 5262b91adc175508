package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/pybridge/internal/cache"
	"github.com/specialistvlad/pybridge/internal/cache/memory"
	"github.com/specialistvlad/pybridge/internal/cache/s3"
	"github.com/specialistvlad/pybridge/internal/cache/sqlstore"
	"github.com/specialistvlad/pybridge/internal/config"
)

// cacheConfig picks the result cache settings: the command line and
// environment win over the bridge file.
func (a *App) cacheConfig() *config.Cache {
	if a.config.Cache.Backend != "" {
		c := a.config.Cache
		return &c
	}
	return a.model.Cache
}

// openCache creates the result cache named by c. A nil config or the
// "none" backend disables caching.
func openCache(ctx context.Context, c *config.Cache) (cache.Cache, error) {
	if c == nil {
		return nil, nil
	}
	switch backend := strings.ToLower(strings.TrimSpace(c.Backend)); backend {
	case "", "none":
		return nil, nil
	case "memory":
		var ttl time.Duration
		if c.TTL != "" {
			d, err := time.ParseDuration(c.TTL)
			if err != nil {
				return nil, fmt.Errorf("cache ttl: %w", err)
			}
			ttl = d
		}
		return memory.New(c.Size, ttl), nil
	case "sqlite":
		path := c.Path
		if path == "" {
			p, err := sqlstore.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		return sqlstore.Open(ctx, sqlstore.SQLite, path)
	case "postgres":
		if c.DSN == "" {
			return nil, fmt.Errorf("postgres cache requires a dsn")
		}
		return sqlstore.Open(ctx, sqlstore.Postgres, c.DSN)
	case "s3":
		return s3.New(s3.Config{
			Endpoint:  c.Endpoint,
			Region:    c.Region,
			AccessKey: c.AccessKey,
			SecretKey: c.SecretKey,
			Bucket:    c.Bucket,
			Prefix:    c.Prefix,
			UseSSL:    c.UseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q: expected memory, sqlite, postgres or s3", backend)
	}
}
