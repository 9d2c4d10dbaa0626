package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metric label values for finished task status.
const (
	statusCompleted = "completed"
	statusFailed    = "failed"
	statusDropped   = "dropped"
)

var (
	tasksSpawned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gently_scheduler_tasks_spawned_total",
			Help: "Total number of tasks accepted by Spawn.",
		},
		[]string{"scheduler"},
	)

	tasksFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gently_scheduler_tasks_finished_total",
			Help: "Total number of tasks that left the scheduler, by status.",
		},
		[]string{"scheduler", "status"},
	)

	activeTasks = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gently_scheduler_active_tasks",
			Help: "Number of tasks currently owned by the scheduler.",
		},
		[]string{"scheduler"},
	)
)

func init() {
	prometheus.MustRegister(tasksSpawned)
	prometheus.MustRegister(tasksFinished)
	prometheus.MustRegister(activeTasks)
}
