package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type moduleMetrics struct {
	queueSize    *prometheus.GaugeVec
	enqueueTotal *prometheus.CounterVec
	dequeueTotal *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec

	activeThreads          prometheus.Gauge
	checkpointSaveDuration prometheus.Histogram
	checkpointLoadDuration prometheus.Histogram

	modelCallTotal    *prometheus.CounterVec
	modelCallDuration *prometheus.HistogramVec

	toolExecutionTotal    *prometheus.CounterVec
	toolExecutionDuration *prometheus.HistogramVec

	turnTotal    *prometheus.CounterVec
	turnDuration *prometheus.HistogramVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			queueSize: prometheus.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "queue_size",
					Help: "Current queue size by lane.",
				},
				[]string{"lane"},
			),
			enqueueTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "enqueue_total",
					Help: "Total enqueue operations by lane.",
				},
				[]string{"lane"},
			),
			dequeueTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dequeue_total",
					Help: "Total dequeue/completion operations by lane and status.",
				},
				[]string{"lane", "status"},
			),
			taskDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "task_duration_seconds",
					Help:    "Task execution duration in seconds by lane.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"lane"},
			),
			activeThreads: prometheus.NewGauge(
				prometheus.GaugeOpts{
					Name: "active_threads",
					Help: "Current checkpointed conversation thread count.",
				},
			),
			checkpointSaveDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "checkpoint_save_duration_seconds",
					Help:    "Checkpoint save duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			checkpointLoadDuration: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "checkpoint_load_duration_seconds",
					Help:    "Checkpoint load duration in seconds.",
					Buckets: prometheus.DefBuckets,
				},
			),
			modelCallTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "model_call_total",
					Help: "Total model calls by provider and status.",
				},
				[]string{"provider", "status"},
			),
			modelCallDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "model_call_duration_seconds",
					Help:    "Model call duration in seconds by provider.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"provider"},
			),
			toolExecutionTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tool_execution_total",
					Help: "Total tool executions by tool and status.",
				},
				[]string{"tool", "status"},
			),
			toolExecutionDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "tool_execution_duration_seconds",
					Help:    "Tool execution duration in seconds by tool.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"tool"},
			),
			turnTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "turn_total",
					Help: "Total orchestrated user turns by status.",
				},
				[]string{"status"},
			),
			turnDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "turn_duration_seconds",
					Help:    "Full user-turn duration in seconds by status.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"status"},
			),
		}

		prometheus.MustRegister(
			m.queueSize,
			m.enqueueTotal,
			m.dequeueTotal,
			m.taskDuration,
			m.activeThreads,
			m.checkpointSaveDuration,
			m.checkpointLoadDuration,
			m.modelCallTotal,
			m.modelCallDuration,
			m.toolExecutionTotal,
			m.toolExecutionDuration,
			m.turnTotal,
			m.turnDuration,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered registers all module metrics with the default registry.
// Safe to call from every package init path.
func EnsureRegistered() {
	getMetrics()
}

// MetricsHandler returns an HTTP handler exposing the default registry.
func MetricsHandler() http.Handler {
	EnsureRegistered()
	return promhttp.Handler()
}

func statusLabel(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}

// RecordQueueEnqueue records an enqueue and the resulting queue size.
func RecordQueueEnqueue(lane string, queueSize int) {
	m := getMetrics()
	m.enqueueTotal.WithLabelValues(lane).Inc()
	m.queueSize.WithLabelValues(lane).Set(float64(queueSize))
}

// SetQueueSize sets the current queue size for a lane.
func SetQueueSize(lane string, queueSize int) {
	getMetrics().queueSize.WithLabelValues(lane).Set(float64(queueSize))
}

// RecordQueueCompletion records a completed task for a lane.
func RecordQueueCompletion(lane string, duration time.Duration, success bool, queueSize int) {
	m := getMetrics()
	m.dequeueTotal.WithLabelValues(lane, statusLabel(success)).Inc()
	m.taskDuration.WithLabelValues(lane).Observe(duration.Seconds())
	m.queueSize.WithLabelValues(lane).Set(float64(queueSize))
}

// SetActiveThreads sets the number of checkpointed threads.
func SetActiveThreads(count int) {
	getMetrics().activeThreads.Set(float64(count))
}

// RecordCheckpointSave records a checkpoint write.
func RecordCheckpointSave(duration time.Duration) {
	getMetrics().checkpointSaveDuration.Observe(duration.Seconds())
}

// RecordCheckpointLoad records a checkpoint read.
func RecordCheckpointLoad(duration time.Duration) {
	getMetrics().checkpointLoadDuration.Observe(duration.Seconds())
}

// RecordModelCall records a model call by provider.
func RecordModelCall(provider string, duration time.Duration, success bool) {
	m := getMetrics()
	m.modelCallTotal.WithLabelValues(provider, statusLabel(success)).Inc()
	m.modelCallDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordToolExecution records a tool invocation.
func RecordToolExecution(tool string, duration time.Duration, success bool) {
	m := getMetrics()
	m.toolExecutionTotal.WithLabelValues(tool, statusLabel(success)).Inc()
	m.toolExecutionDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// RecordTurn records one full orchestrated user turn.
func RecordTurn(duration time.Duration, success bool) {
	m := getMetrics()
	m.turnTotal.WithLabelValues(statusLabel(success)).Inc()
	m.turnDuration.WithLabelValues(statusLabel(success)).Observe(duration.Seconds())
}
