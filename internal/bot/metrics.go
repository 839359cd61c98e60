package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	MessagesProcessed    prometheus.Counter
	CommandsProcessed    prometheus.Counter
	CallbacksProcessed   prometheus.Counter
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	ReminderSendFailures prometheus.Counter
}

// NewMetrics создает новые метрики
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grooming_bot_messages_processed_total",
			Help: "Total number of messages processed",
		}),

		CommandsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grooming_bot_commands_processed_total",
			Help: "Total number of slash commands processed",
		}),

		CallbacksProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grooming_bot_callbacks_processed_total",
			Help: "Total number of callback queries processed",
		}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grooming_bot_errors_total",
			Help: "Total number of panics recovered in update handlers",
		}),

		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "grooming_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		ReminderSendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "grooming_bot_reminder_send_failures_total",
			Help: "Reminder messages that could not be delivered",
		}),
	}
}
