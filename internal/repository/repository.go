package repository

import (
	"time"

	"workorder-service/pkg/metrics"
)

// observe times one query for the db_query_duration_seconds histogram.
// Usage: defer observe("insert", "work_orders")()
func observe(operation, table string) func() {
	start := time.Now()
	return func() {
		metrics.RecordDBQueryDuration(operation, table, time.Since(start))
	}
}
