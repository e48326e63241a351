package metrics

import "github.com/prometheus/client_golang/prometheus"

// Selection metrics
var (
	SelectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "selections_total",
		Help:      "Total number of squad selections by outcome",
	}, []string{"outcome"})
	SelectionPredictedPoints = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "selection_predicted_points",
		Help:      "Summed predicted points of the last selected squad",
	})
	SelectionBudgetRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "selection_budget_remaining",
		Help:      "Budget left after the last selected squad",
	})
)

// RecordSelection records a feasible squad.
func RecordSelection(predicted, remaining float64) {
	SelectionsTotal.WithLabelValues("feasible").Inc()
	SelectionPredictedPoints.Set(predicted)
	SelectionBudgetRemaining.Set(remaining)
}

// RecordInfeasibleSelection records a selection that could not fill the formation.
func RecordInfeasibleSelection() {
	SelectionsTotal.WithLabelValues("infeasible").Inc()
}
