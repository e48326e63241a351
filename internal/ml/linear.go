package ml

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LinearRegressor is ridge-penalized least squares with an unpenalized
// intercept. Columns are centred before solving the normal equations.
type LinearRegressor struct {
	ridge     float64
	coef      *mat.VecDense
	intercept float64
}

// NewLinearRegressor creates a ridge regressor; ridge 0 is ordinary least squares
func NewLinearRegressor(ridge float64) *LinearRegressor {
	return &LinearRegressor{ridge: ridge}
}

// Name identifies the model in logs and metrics
func (r *LinearRegressor) Name() string { return "linear" }

// Fit solves (XcᵀXc + λI)β = Xcᵀ(y - ȳ)
func (r *LinearRegressor) Fit(ctx context.Context, x mat.Matrix, y []float64) error {
	start := time.Now()
	err := r.fit(ctx, x, y)
	ModelFitDuration.WithLabelValues(r.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		ModelFitsTotal.WithLabelValues(r.Name(), "failure").Inc()
		return err
	}
	ModelFitsTotal.WithLabelValues(r.Name(), "success").Inc()
	return nil
}

func (r *LinearRegressor) fit(ctx context.Context, x mat.Matrix, y []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, p := x.Dims()
	if n != len(y) {
		return fmt.Errorf("%w: %d rows, %d targets", ErrShapeMismatch, n, len(y))
	}
	if n == 0 || p == 0 {
		return fmt.Errorf("%w: empty design matrix", ErrShapeMismatch)
	}

	means := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		mat.Col(col, j, x)
		means[j] = stat.Mean(col, nil)
	}
	var xc mat.Dense
	xc.Apply(func(_, j int, v float64) float64 { return v - means[j] }, x)

	yMean := stat.Mean(y, nil)
	yc := mat.NewVecDense(n, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	gram := mat.NewSymDense(p, nil)
	gram.SymOuterK(1, xc.T())
	var rhs mat.VecDense
	rhs.MulVec(xc.T(), yc)

	beta, err := solveRidge(gram, &rhs, r.ridge)
	if err != nil {
		return err
	}

	r.coef = beta
	r.intercept = yMean - mat.Dot(mat.NewVecDense(p, means), beta)
	return nil
}

// solveRidge adds the penalty to the diagonal and solves by Cholesky. A
// rank-deficient gram matrix with no penalty retries once with a small
// jitter proportional to its trace.
func solveRidge(gram *mat.SymDense, rhs *mat.VecDense, ridge float64) (*mat.VecDense, error) {
	p := gram.SymmetricDim()
	penalties := []float64{ridge}
	trace := 0.0
	for i := 0; i < p; i++ {
		trace += gram.At(i, i)
	}
	if jitter := 1e-8 * (trace/float64(p) + 1); jitter > ridge {
		penalties = append(penalties, jitter)
	}

	for _, lambda := range penalties {
		a := mat.NewSymDense(p, nil)
		a.CopySym(gram)
		for i := 0; i < p; i++ {
			a.SetSym(i, i, a.At(i, i)+lambda)
		}
		var chol mat.Cholesky
		if !chol.Factorize(a) {
			continue
		}
		beta := mat.NewVecDense(p, nil)
		if err := chol.SolveVecTo(beta, rhs); err != nil {
			continue
		}
		return beta, nil
	}
	return nil, ErrSingular
}

// Predict scores each row of x
func (r *LinearRegressor) Predict(ctx context.Context, x mat.Matrix) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.coef == nil {
		return nil, ErrNotFitted
	}
	n, p := x.Dims()
	if p != r.coef.Len() {
		return nil, fmt.Errorf("%w: model has %d features, got %d", ErrShapeMismatch, r.coef.Len(), p)
	}

	var out mat.VecDense
	out.MulVec(x, r.coef)
	preds := make([]float64, n)
	for i := range preds {
		preds[i] = out.AtVec(i) + r.intercept
	}
	ModelPredictionsTotal.WithLabelValues(r.Name()).Add(float64(n))
	return preds, nil
}

// Coefficients returns a copy of the fitted weights, nil before Fit
func (r *LinearRegressor) Coefficients() []float64 {
	if r.coef == nil {
		return nil
	}
	out := make([]float64, r.coef.Len())
	for i := range out {
		out[i] = r.coef.AtVec(i)
	}
	return out
}

// Intercept returns the fitted intercept
func (r *LinearRegressor) Intercept() float64 { return r.intercept }
