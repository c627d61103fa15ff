package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

/*
Metrics groups the counters every service in the binary shares. They are
registered on the default registry and exposed at /metrics by the agent
servers.
*/
var Metrics = struct {
	PollAttempts   *prometheus.CounterVec
	TaskOutcomes   *prometheus.CounterVec
	ToolCalls      *prometheus.CounterVec
	ToolDuration   *prometheus.HistogramVec
	RPCRequests    *prometheus.CounterVec
	ActiveTasks    prometheus.Gauge
	LLMRequests    *prometheus.CounterVec
	RemoteFailures *prometheus.CounterVec
}{
	PollAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Name:      "poll_attempts_total",
		Help:      "tasks/get calls issued while waiting on remote tasks, by observed state.",
	}, []string{"state"}),

	TaskOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Name:      "task_outcomes_total",
		Help:      "Terminal states reached by tasks, by side (local or remote).",
	}, []string{"side", "state"}),

	ToolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Name:      "tool_calls_total",
		Help:      "MCP tool invocations by tool name and status.",
	}, []string{"tool", "status"}),

	ToolDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "helpdesk",
		Name:      "tool_duration_seconds",
		Help:      "MCP tool execution duration in seconds.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"tool"}),

	RPCRequests: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Name:      "rpc_requests_total",
		Help:      "A2A JSON-RPC requests served, by agent.",
	}, []string{"agent"}),

	ActiveTasks: promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "helpdesk",
		Name:      "active_tasks",
		Help:      "Tasks currently being worked on by local agents.",
	}),

	LLMRequests: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Name:      "llm_requests_total",
		Help:      "LLM completion requests by provider and status.",
	}, []string{"provider", "status"}),

	RemoteFailures: promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "helpdesk",
		Name:      "remote_failures_total",
		Help:      "Failures talking to remote agents, by error kind.",
	}, []string{"kind"}),
}

// Status turns an error into the label value used by the status dimension.
func Status(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}
