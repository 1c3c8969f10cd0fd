package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/febriand/go-shop-api/internal/redisx"
)

// Service computes dashboard aggregates over the order ledger. Redis is an
// optional read-through cache; a nil client disables caching.
type Service struct {
	store Store
	redis *redis.Client
}

func NewService(store Store, rdb *redis.Client) *Service {
	return &Service{store: store, redis: rdb}
}

// Dashboard returns today's summary. The two ledger scans run concurrently.
func (s *Service) Dashboard(ctx context.Context) (Summary, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	key := fmt.Sprintf(redisx.KeyDashboard, today.Format(DateLayout))

	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, key).Result(); err == nil {
			var cached Summary
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	var (
		totals    DayPoint
		customers int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.store.DayTotals(gctx, today)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = s.store.NewCustomers(gctx, today)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	avg := decimal.Zero
	if totals.Orders > 0 {
		avg = totals.Sales.DivRound(decimal.NewFromInt(int64(totals.Orders)), 2)
	}
	sum := Summary{
		Date:              today.Format(DateLayout),
		TotalSales:        totals.Sales,
		NewOrders:         totals.Orders,
		NewCustomers:      customers,
		TotalOrders:       totals.Orders,
		AverageOrderValue: avg,
	}

	if s.redis != nil {
		if b, err := json.Marshal(sum); err == nil {
			_ = s.redis.Set(ctx, key, b, redisx.TTLDashboard).Err()
		}
	}
	return sum, nil
}

// SalesChart returns one point per day for the trailing window, preferring
// the metric rows the worker maintains and backfilling missing days from the
// ledger.
func (s *Service) SalesChart(ctx context.Context, days int) ([]DayPoint, error) {
	if days <= 0 {
		days = 7
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(days - 1))

	out := make([]DayPoint, 0, days)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		p, ok, err := s.store.GetSalesMetric(ctx, day)
		if err != nil {
			return nil, err
		}
		if !ok {
			p, err = s.store.DayTotals(ctx, day)
			if err != nil {
				return nil, err
			}
			if err := s.store.SaveSalesMetric(ctx, p); err != nil {
				return nil, err
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]RecentOrder, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.RecentOrders(ctx, limit)
}
