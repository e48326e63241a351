package ml

import (
	"math"
)

// Evaluation summarizes prediction error where the target is known
type Evaluation struct {
	N    int
	RMSE float64
	MAE  float64
}

// Metrics returns the evaluation as named values for run records and logs
func (e Evaluation) Metrics() map[string]float64 {
	return map[string]float64{
		"eval_rows": float64(e.N),
		"rmse":      e.RMSE,
		"mae":       e.MAE,
	}
}

// Evaluate compares predictions with actuals, skipping rows whose actual is
// unknown. N is 0 and both errors are NaN when nothing can be compared.
func Evaluate(predicted []float64, actual []*float64) Evaluation {
	var sq, abs float64
	n := 0
	for i, a := range actual {
		if a == nil || i >= len(predicted) {
			continue
		}
		d := predicted[i] - *a
		sq += d * d
		abs += math.Abs(d)
		n++
	}
	if n == 0 {
		return Evaluation{RMSE: math.NaN(), MAE: math.NaN()}
	}
	return Evaluation{
		N:    n,
		RMSE: math.Sqrt(sq / float64(n)),
		MAE:  abs / float64(n),
	}
}

// Record publishes the evaluation to the model error gauge
func (e Evaluation) Record(modelType string) {
	if e.N == 0 {
		return
	}
	ModelEvalError.WithLabelValues(modelType, "rmse").Set(e.RMSE)
	ModelEvalError.WithLabelValues(modelType, "mae").Set(e.MAE)
}
