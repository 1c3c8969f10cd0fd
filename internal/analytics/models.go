package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

type Summary struct {
	Date              string          `json:"date"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	NewOrders         int             `json:"new_orders"`
	NewCustomers      int             `json:"new_customers"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type DayPoint struct {
	Date      string          `json:"date"`
	Sales     decimal.Decimal `json:"sales"`
	Orders    int             `json:"daily_orders"`
	Customers int             `json:"daily_customers"`
}

type RecentOrder struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Store is the read-only slice of the ledger the aggregator consumes, plus
// the precomputed daily metric rows the worker maintains.
type Store interface {
	DayTotals(ctx context.Context, day time.Time) (DayPoint, error)
	NewCustomers(ctx context.Context, day time.Time) (int, error)
	GetSalesMetric(ctx context.Context, day time.Time) (DayPoint, bool, error)
	SaveSalesMetric(ctx context.Context, p DayPoint) error
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
}
