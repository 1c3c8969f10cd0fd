package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/febriand/go-shop-api/internal/analytics"
)

func dayBounds(day time.Time) (time.Time, time.Time) {
	start := day.UTC().Truncate(24 * time.Hour)
	return start, start.AddDate(0, 0, 1)
}

func (s *Postgres) DayTotals(ctx context.Context, day time.Time) (analytics.DayPoint, error) {
	start, end := dayBounds(day)
	p := analytics.DayPoint{Date: start.Format(analytics.DateLayout)}
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0), COUNT(*), COUNT(DISTINCT user_id)
		FROM orders WHERE created_at >= $1 AND created_at < $2`, start, end).
		Scan(&p.Sales, &p.Orders, &p.Customers)
	return p, err
}

func (s *Postgres) NewCustomers(ctx context.Context, day time.Time) (int, error) {
	start, end := dayBounds(day)
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM users WHERE created_at >= $1 AND created_at < $2`, start, end).Scan(&n)
	return n, err
}

func (s *Postgres) GetSalesMetric(ctx context.Context, day time.Time) (analytics.DayPoint, bool, error) {
	start, _ := dayBounds(day)
	p := analytics.DayPoint{Date: start.Format(analytics.DateLayout)}
	err := s.pool.QueryRow(ctx, `
		SELECT daily_sales, daily_orders, daily_customers
		FROM sales_metrics WHERE date=$1`, start).
		Scan(&p.Sales, &p.Orders, &p.Customers)
	if errors.Is(err, pgx.ErrNoRows) {
		return analytics.DayPoint{}, false, nil
	}
	if err != nil {
		return analytics.DayPoint{}, false, err
	}
	return p, true, nil
}

func (s *Postgres) SaveSalesMetric(ctx context.Context, p analytics.DayPoint) error {
	day, err := time.Parse(analytics.DateLayout, p.Date)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO sales_metrics (date, daily_sales, daily_orders, daily_customers)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (date)
		DO UPDATE SET daily_sales = EXCLUDED.daily_sales,
			daily_orders = EXCLUDED.daily_orders,
			daily_customers = EXCLUDED.daily_customers`,
		day, p.Sales, p.Orders, p.Customers)
	return err
}

func (s *Postgres) RecentOrders(ctx context.Context, limit int) ([]analytics.RecentOrder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT o.id, u.username, u.first_name, u.last_name, o.total_amount, o.status, o.created_at
		FROM orders o LEFT JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []analytics.RecentOrder
	for rows.Next() {
		var (
			r                     analytics.RecentOrder
			username, first, last sql.NullString
		)
		if err := rows.Scan(&r.ID, &username, &first, &last, &r.Total, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.CustomerName = displayName(username.String, first.String, last.String)
		out = append(out, r)
	}
	return out, rows.Err()
}

func displayName(username, first, last string) string {
	full := first
	if last != "" {
		if full != "" {
			full += " "
		}
		full += last
	}
	if full != "" {
		return full
	}
	if username != "" {
		return username
	}
	return "Guest"
}
