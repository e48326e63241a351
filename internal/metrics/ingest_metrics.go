package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion metrics
var (
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of FPL API requests by endpoint",
	}, []string{"endpoint"})
	APIFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_failures_total",
		Help:      "Total number of failed FPL API requests by endpoint and error code",
	}, []string{"endpoint", "code"})
	PlayersIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "players_ingested_total",
		Help:      "Total number of player histories ingested",
	})
)

// RecordAPIRequest records an API request and, when code is not empty, its failure.
func RecordAPIRequest(endpoint, code string) {
	APIRequestsTotal.WithLabelValues(endpoint).Inc()
	if code != "" {
		APIFailuresTotal.WithLabelValues(endpoint, code).Inc()
	}
}

// RecordPlayersIngested adds to the ingested player counter.
func RecordPlayersIngested(n int) {
	PlayersIngestedTotal.Add(float64(n))
}
