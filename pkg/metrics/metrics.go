package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "servicelink"

var (
	once sync.Once

	servicesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "services_created_total",
			Help:      "Count of service listings created.",
		},
	)

	servicesDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "services_deleted_total",
			Help:      "Count of service listings deleted.",
		},
	)

	serviceConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "service_conflicts_total",
			Help:      "Count of rejected service mutations by reason.",
		},
		[]string{"reason"},
	)

	bookingRequested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_requested_total",
			Help:      "Count of booking requests created.",
		},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Count of booking status transitions by target status.",
		},
		[]string{"status"},
	)

	bookingStale = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_stale_transitions_total",
			Help:      "Count of transitions refused because the booking was no longer pending.",
		},
		[]string{"action"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method and status code.",
		},
		[]string{"method", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	kafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Count of Kafka messages by direction and result.",
		},
		[]string{"direction", "result"},
	)

	kafkaDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_message_duration_seconds",
			Help:      "Kafka publish and handle latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"direction"},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Count of booking notifications sent by event type.",
		},
		[]string{"event_type"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			servicesCreated,
			servicesDeleted,
			serviceConflicts,
			bookingRequested,
			bookingTransitions,
			bookingStale,
			httpRequests,
			httpDuration,
			kafkaMessages,
			kafkaDuration,
			notificationsSent,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func IncServiceCreated() {
	servicesCreated.Inc()
}

func IncServiceDeleted() {
	servicesDeleted.Inc()
}

func IncServiceConflict(reason string) {
	serviceConflicts.WithLabelValues(reason).Inc()
}

func IncBookingRequested() {
	bookingRequested.Inc()
}

func IncBookingTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

func IncBookingStale(action string) {
	bookingStale.WithLabelValues(action).Inc()
}

func ObserveHTTPRequest(method string, code int, d time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func ObserveKafkaMessage(direction string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	kafkaMessages.WithLabelValues(direction, result).Inc()
	kafkaDuration.WithLabelValues(direction).Observe(d.Seconds())
}

func IncNotificationSent(eventType string) {
	notificationsSent.WithLabelValues(eventType).Inc()
}
