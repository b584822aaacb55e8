package quote

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joripage/exchange-engine/pkg/exchange/model"
)

const keyPrefix = "quote:"

// Cache keeps the top of book per ticker in redis for display and quoting
// consumers. Values are last-writer-wins; the book itself stays authoritative.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func (c *Cache) Update(ctx context.Context, ticker string, bid, ask *model.Order) error {
	fields := map[string]interface{}{
		"bid_price": "", "bid_qty": 0,
		"ask_price": "", "ask_qty": 0,
	}
	if bid != nil {
		fields["bid_price"] = bid.Price.String()
		fields["bid_qty"] = bid.LeavesQuantity
	}
	if ask != nil {
		fields["ask_price"] = ask.Price.String()
		fields["ask_qty"] = ask.LeavesQuantity
	}

	key := keyPrefix + ticker
	if err := c.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return err
	}
	if c.ttl > 0 {
		return c.rdb.Expire(ctx, key, c.ttl).Err()
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, ticker string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, keyPrefix+ticker).Result()
}
