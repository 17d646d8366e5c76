package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abm5616/farmcloud/models"
)

// Cached decorates an Accessor with a short-TTL redis cache. The
// catalog is read on every order-form open, so the lists are cached
// aggressively; redis failures fall through to the source.
type Cached struct {
	next   Accessor
	client *redis.Client
	ttl    time.Duration
}

func NewCached(next Accessor, addr string, ttl time.Duration) *Cached {
	return &Cached{
		next:   next,
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func cacheKey(operation string) string {
	return "farmcloud:catalog:" + operation
}

func fetch[T any](ctx context.Context, c *Cached, operation string, load func(context.Context) ([]T, error)) ([]T, error) {
	key := cacheKey(operation)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var cached []T
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		// Undecodable entries are treated as misses and rewritten.
	} else if err != redis.Nil {
		slog.Warn("catalog cache read failed", "operation", operation, "error", err)
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if body, err := json.Marshal(items); err == nil {
		if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
			slog.Warn("catalog cache write failed", "operation", operation, "error", err)
		}
	}
	return items, nil
}

func (c *Cached) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return fetch(ctx, c, "customers", c.next.ListCustomers)
}

func (c *Cached) ListAvailableAnimals(ctx context.Context) ([]models.Animal, error) {
	return fetch(ctx, c, "animals", c.next.ListAvailableAnimals)
}

func (c *Cached) ListActiveOffers(ctx context.Context) ([]models.Offer, error) {
	return fetch(ctx, c, "offers", c.next.ListActiveOffers)
}
