// Package metrics exposes Prometheus counters for the reminder and sweep jobs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/habitforge/internal/constants"
)

var (
	// RemindersScheduled counts one-shot reminder tasks handed to the scheduler.
	RemindersScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: constants.AppName,
		Subsystem: "reminder",
		Name:      "scheduled_total",
		Help:      "Total reminder tasks scheduled",
	})

	// RemindersSkipped counts schedule decisions that produced no task.
	// Labels: reason (no_time, invalid_time, invalid_date, past_start, elapsed, scheduler_error)
	RemindersSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: constants.AppName,
		Subsystem: "reminder",
		Name:      "skipped_total",
		Help:      "Total reminder schedule decisions that did not schedule a task",
	}, []string{"reason"})

	// RemindersCancelled counts pending tasks removed by cancel-by-tag.
	RemindersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: constants.AppName,
		Subsystem: "reminder",
		Name:      "cancelled_total",
		Help:      "Total pending reminder tasks cancelled",
	})

	// RemindersFired counts reminder callbacks by outcome.
	// Labels: outcome (notified, completed, gone, stale, error)
	RemindersFired = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: constants.AppName,
		Subsystem: "reminder",
		Name:      "fired_total",
		Help:      "Total reminder callbacks by outcome",
	}, []string{"outcome"})

	// SweepRuns counts daily sweep passes by result.
	// Labels: result (success, retry, failed)
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: constants.AppName,
		Subsystem: "sweep",
		Name:      "runs_total",
		Help:      "Total daily sweep passes by result",
	}, []string{"result"})

	// SweepReset counts completion records removed by the sweep.
	SweepReset = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: constants.AppName,
		Subsystem: "sweep",
		Name:      "records_reset_total",
		Help:      "Total stray completion records removed by the daily sweep",
	})
)

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
