package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/febriand/go-shop-api/internal/kafka"
	"github.com/febriand/go-shop-api/internal/orders"
	"github.com/febriand/go-shop-api/internal/redisx"
)

// Consumer refreshes the daily sales metric whenever an order is placed.
// Recomputing the day from the ledger keeps the handler idempotent; replays
// and duplicates converge to the same row.
type Consumer struct {
	Store       Store
	Redis       *redis.Client
	ServiceName string
}

func (c *Consumer) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, c.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, c.Redis, dkey); exists {
		return nil
	}
	_ = c.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	day := p.PlacedAt.UTC().Truncate(24 * time.Hour)
	point, err := c.Store.DayTotals(ctx, day)
	if err != nil {
		return err
	}
	if err := c.Store.SaveSalesMetric(ctx, point); err != nil {
		return err
	}

	// invalidate the cached dashboard for that day
	_ = c.Redis.Del(ctx, fmt.Sprintf(redisx.KeyDashboard, day.Format(DateLayout))).Err()

	log.Printf("sales metric refreshed: date=%s orders=%d", point.Date, point.Orders)
	return nil
}
