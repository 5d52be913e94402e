package metrics

import (
	"context"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicContextKey is the context key for the *newrelic.Application used by
// custom metrics and events
type NewRelicContextKey struct{}

func applicationFromContext(ctx context.Context) *newrelic.Application {
	nr, _ := ctx.Value(NewRelicContextKey{}).(*newrelic.Application)
	return nr
}

// RecordCount records a count metric
func RecordCount(ctx context.Context, metricName string, count uint64) {
	if nr := applicationFromContext(ctx); nr != nil {
		nr.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric in milliseconds
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if nr := applicationFromContext(ctx); nr != nil {
		nr.RecordCustomMetric(metricName, float64(duration)/float64(time.Millisecond))
	}
}

// RecordEvent records a custom event, such as a committed instruction, with a
// set of key-value attributes
func RecordEvent(ctx context.Context, eventName string, attributes map[string]interface{}) {
	if nr := applicationFromContext(ctx); nr != nil {
		nr.RecordCustomEvent(eventName, attributes)
	}
}
