// ABOUTME: Prometheus metrics for searches, tasks, and the conversation log
// ABOUTME: Registered on the default registry and served by Handler
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Searches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jarvis_searches_total",
			Help: "Total number of dispatched searches",
		},
	)

	ProviderResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jarvis_provider_results_total",
			Help: "Provider outcomes by source and outcome (ok, error, timeout)",
		},
		[]string{"source", "outcome"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "jarvis_search_duration_seconds",
			Help: "Wall time of a fan-out search in seconds",
		},
	)

	TaskExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jarvis_task_executions_total",
			Help: "Task executions reaching a terminal state",
		},
		[]string{"operation", "state"},
	)

	ConversationEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jarvis_conversation_entries_total",
			Help: "Conversation entries appended by speaker",
		},
		[]string{"speaker"},
	)
)

// Handler exposes the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
