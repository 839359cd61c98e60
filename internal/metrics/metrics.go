package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "groombot",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	appointmentsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "groombot",
			Name:      "appointments_created_total",
			Help:      "Appointments created through the bot.",
		},
	)

	slotClaimConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "groombot",
			Name:      "slot_claim_conflicts_total",
			Help:      "Booking attempts that lost the race for a slot.",
		},
	)

	remindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "groombot",
			Name:      "reminders_sent_total",
			Help:      "Reminder messages delivered to clients.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, appointmentsCreated, slotClaimConflicts, remindersSent)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncAppointmentCreated counts a successful booking.
func IncAppointmentCreated() {
	appointmentsCreated.Inc()
}

// IncSlotClaimConflict counts a lost booking race.
func IncSlotClaimConflict() {
	slotClaimConflicts.Inc()
}

// IncReminderSent counts a delivered reminder.
func IncReminderSent() {
	remindersSent.Inc()
}

// Serve exposes /metrics until the context is cancelled.
func Serve(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
