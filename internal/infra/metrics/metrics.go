package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Inbound bot commands by command name.",
		},
		[]string{"command"},
	)

	lessonsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lessons_delivered_total",
			Help: "Successfully delivered lessons per course day.",
		},
		[]string{"day"},
	)

	paywallBlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paywall_blocks_total",
			Help: "Lesson requests denied by the paid-access check, per day.",
		},
		[]string{"day"},
	)

	chunksSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chunks_sent_total",
			Help: "Message chunks handed to the Telegram transport.",
		},
	)

	sendFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "send_failures_total",
			Help: "Transport send failures (direct or chunked).",
		},
	)

	duplicateUpdates = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicate_updates_total",
			Help: "Inbound updates dropped by the (chat, message) deduper.",
		},
	)

	deliveryLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lesson_delivery_latency_ms",
			Help:    "End-to-end lesson delivery latency in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"day", "success"},
	)

	inactivePaidUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inactive_paid_users",
			Help: "Paid users with no activity within the reminder window.",
		},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			commandsTotal, lessonsDelivered, paywallBlocks,
			chunksSent, sendFailures, duplicateUpdates,
			deliveryLatencyMs, inactivePaidUsers,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Dispatcher helpers --------

func IncCommand(command string) {
	commandsTotal.WithLabelValues(norm(command)).Inc()
}

func IncDuplicateUpdate() { duplicateUpdates.Inc() }

// -------- Lesson helpers --------

func IncLessonDelivered(day int) {
	lessonsDelivered.WithLabelValues(strconv.Itoa(day)).Inc()
}

func IncPaywallBlock(day int) {
	paywallBlocks.WithLabelValues(strconv.Itoa(day)).Inc()
}

func ObserveDeliveryLatency(day int, latencyMs int64, success bool) {
	deliveryLatencyMs.WithLabelValues(strconv.Itoa(day), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

// -------- Transport helpers --------

func IncChunkSent()   { chunksSent.Inc() }
func IncSendFailure() { sendFailures.Inc() }

// -------- Reminder helpers --------

func SetInactivePaidUsers(n int) { inactivePaidUsers.Set(float64(n)) }
