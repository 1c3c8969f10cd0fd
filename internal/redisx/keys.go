package redisx

import "time"

const (
	// Dashboard summary cache: analytics:dashboard:{YYYY-MM-DD} -> JSON summary
	KeyDashboard = "analytics:dashboard:%s"

	// Sales chart cache: analytics:sales:{days} -> JSON series
	KeySalesChart = "analytics:sales:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDashboard  = 5 * time.Minute
	TTLSalesChart = 5 * time.Minute
	TTLDedup      = 48 * time.Hour
)
