package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/leadcrm"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Lead lifecycle
	LeadsCreatedTotal  metric.Int64Counter
	LeadsAssignedTotal metric.Int64Counter
	LeadsDeletedTotal  metric.Int64Counter

	// Agent lifecycle
	AgentsCreatedTotal metric.Int64Counter
	AgentsDeletedTotal metric.Int64Counter

	// Authorization outcomes, labelled by operation and outcome
	AccessDeniedTotal metric.Int64Counter

	// Notifications
	NotificationsSentTotal    metric.Int64Counter
	NotificationsFailedTotal  metric.Int64Counter
	NotificationsDroppedTotal metric.Int64Counter
	NotificationDuration      metric.Float64Histogram
	NotificationQueueDepth    metric.Int64UpDownCounter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary.
// Instruments are bound to the global meter provider at first use, so telemetry
// must be initialised before the first call to record anything.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.LeadsCreatedTotal, _ = meter.Int64Counter(
		"leadcrm.leads.created.total",
		metric.WithDescription("Total number of leads created"),
		metric.WithUnit("{lead}"),
	)

	m.LeadsAssignedTotal, _ = meter.Int64Counter(
		"leadcrm.leads.assigned.total",
		metric.WithDescription("Total number of lead assignments"),
		metric.WithUnit("{lead}"),
	)

	m.LeadsDeletedTotal, _ = meter.Int64Counter(
		"leadcrm.leads.deleted.total",
		metric.WithDescription("Total number of leads deleted"),
		metric.WithUnit("{lead}"),
	)

	m.AgentsCreatedTotal, _ = meter.Int64Counter(
		"leadcrm.agents.created.total",
		metric.WithDescription("Total number of agents created"),
		metric.WithUnit("{agent}"),
	)

	m.AgentsDeletedTotal, _ = meter.Int64Counter(
		"leadcrm.agents.deleted.total",
		metric.WithDescription("Total number of agents deleted"),
		metric.WithUnit("{agent}"),
	)

	m.AccessDeniedTotal, _ = meter.Int64Counter(
		"leadcrm.access.denied.total",
		metric.WithDescription("Total number of operations rejected by the access policy"),
		metric.WithUnit("{request}"),
	)

	m.NotificationsSentTotal, _ = meter.Int64Counter(
		"leadcrm.notifications.sent.total",
		metric.WithDescription("Total number of notifications delivered"),
		metric.WithUnit("{notification}"),
	)

	m.NotificationsFailedTotal, _ = meter.Int64Counter(
		"leadcrm.notifications.failed.total",
		metric.WithDescription("Total number of notifications that failed after all retries"),
		metric.WithUnit("{notification}"),
	)

	m.NotificationsDroppedTotal, _ = meter.Int64Counter(
		"leadcrm.notifications.dropped.total",
		metric.WithDescription("Total number of notifications dropped because the queue was full or closed"),
		metric.WithUnit("{notification}"),
	)

	m.NotificationDuration, _ = meter.Float64Histogram(
		"leadcrm.notifications.duration",
		metric.WithDescription("Duration of notification delivery including retries"),
		metric.WithUnit("ms"),
	)

	m.NotificationQueueDepth, _ = meter.Int64UpDownCounter(
		"leadcrm.notifications.queue.depth",
		metric.WithDescription("Number of notifications waiting for delivery"),
		metric.WithUnit("{notification}"),
	)

	return m
}
