package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const pageKeyPrefix = "page:"

var (
	pageCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_page_cache_hits_total",
		Help: "Number of page responses served from cache",
	})
	pageCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_page_cache_misses_total",
		Help: "Number of page requests that missed the cache",
	})
	pageCacheClears = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quill_page_cache_clears_total",
		Help: "Number of explicit page cache invalidations",
	})
)

// cachedPage is the opaque payload stored per route. The cache never inspects
// the body; a stale page stays stale until the TTL lapses or Clear runs.
type cachedPage struct {
	ContentType string `json:"content_type"`
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
}

// PageCache stores fully rendered GET responses keyed by path and query
// string. With a nil Redis client every lookup is a miss and every store is a
// no-op, so handlers behave identically with caching disabled.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewPageCache builds a page cache with the given TTL. client may be nil.
func NewPageCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *PageCache {
	return &PageCache{client: client, ttl: ttl, logger: logger}
}

// TTL returns the configured expiry window.
func (p *PageCache) TTL() time.Duration {
	return p.ttl
}

func pageKey(c *fiber.Ctx) string {
	key := pageKeyPrefix + c.Path()
	if qs := string(c.Request().URI().QueryString()); qs != "" {
		key += "?" + qs
	}
	return key
}

// Middleware serves GET responses from the cache and stores successful
// responses on a miss.
func (p *PageCache) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if p.client == nil || p.ttl <= 0 || c.Method() != fiber.MethodGet {
			return c.Next()
		}

		key := pageKey(c)
		ctx := c.UserContext()

		raw, err := p.client.Get(ctx, key).Bytes()
		if err == nil {
			var page cachedPage
			if jsonErr := json.Unmarshal(raw, &page); jsonErr == nil {
				pageCacheHits.Inc()
				c.Set(fiber.HeaderContentType, page.ContentType)
				return c.Status(page.Status).Send(page.Body)
			}
		} else if err != redis.Nil {
			p.logger.Warn("page cache read failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		pageCacheMisses.Inc()

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status != fiber.StatusOK {
			return nil
		}

		page := cachedPage{
			ContentType: string(c.Response().Header.ContentType()),
			Status:      status,
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		encoded, err := json.Marshal(page)
		if err != nil {
			return nil
		}
		if err := p.client.Set(ctx, key, encoded, p.ttl).Err(); err != nil {
			p.logger.Warn("page cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return nil
	}
}

// Clear removes every cached page. Used after writes that must be visible
// immediately and by tests.
func (p *PageCache) Clear(ctx context.Context) error {
	if p.client == nil {
		return nil
	}

	var cursor uint64
	for {
		keys, next, err := p.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := p.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	pageCacheClears.Inc()
	return nil
}
