// Package classify fits and evaluates a binary logistic-regression model
// over label-encoded medal records.
package classify

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// ModelOption configures a LogisticRegression.
type ModelOption func(*LogisticRegression)

// WithC sets the inverse regularisation strength.
func WithC(c float64) ModelOption {
	return func(m *LogisticRegression) {
		if c > 0 {
			m.c = c
		}
	}
}

// WithMaxIterations caps the optimiser's major iterations.
func WithMaxIterations(n int) ModelOption {
	return func(m *LogisticRegression) {
		if n > 0 {
			m.maxIter = n
		}
	}
}

// LogisticRegression is an L2-regularised binary classifier. Features are
// standardised internally, so Coefficients are comparable across features.
type LogisticRegression struct {
	c       float64
	maxIter int

	mean, scale []float64
	weights     []float64
	intercept   float64
	// warning is set when the optimiser stopped without converging.
	warning error
}

// NewLogisticRegression creates an unfitted model (C = 1, 100 iterations).
func NewLogisticRegression(opts ...ModelOption) *LogisticRegression {
	m := &LogisticRegression{c: 1, maxIter: 100}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit estimates weights from rows x and 0/1 labels y.
func (m *LogisticRegression) Fit(x [][]float64, y []int) error {
	if len(x) == 0 {
		return ErrEmptyDataset
	}
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrDimensionMismatch, len(x), len(y))
	}
	dim := len(x[0])
	for i, row := range x {
		if len(row) != dim {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, len(row), dim)
		}
	}
	labels := make([]float64, len(y))
	seen := [2]bool{}
	for i, v := range y {
		if v != 0 && v != 1 {
			return fmt.Errorf("%w: got %d", ErrInvalidLabel, v)
		}
		seen[v] = true
		labels[i] = float64(v)
	}
	if !seen[0] || !seen[1] {
		return ErrSingleClass
	}

	m.standardize(x, dim)
	z := make([][]float64, len(x))
	for i, row := range x {
		z[i] = m.transform(row)
	}

	n := float64(len(z))
	penalty := 1 / (m.c * n)
	// params holds the weights followed by the intercept
	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			w, b := params[:dim], params[dim]
			loss := 0.0
			for i, row := range z {
				t := floats.Dot(w, row) + b
				loss += softplus(t) - labels[i]*t
			}
			return loss/n + 0.5*penalty*floats.Dot(w, w)
		},
		Grad: func(grad, params []float64) {
			w, b := params[:dim], params[dim]
			for j := range grad {
				grad[j] = 0
			}
			for i, row := range z {
				r := sigmoid(floats.Dot(w, row)+b) - labels[i]
				floats.AddScaled(grad[:dim], r, row)
				grad[dim] += r
			}
			floats.Scale(1/n, grad)
			floats.AddScaled(grad[:dim], penalty, w)
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: 1e-6,
		MajorIterations:   m.maxIter,
	}
	result, err := optimize.Minimize(problem, make([]float64, dim+1), settings, &optimize.LBFGS{})
	if result == nil {
		return fmt.Errorf("minimize: %w", err)
	}
	m.warning = err
	if m.warning == nil && result.Status.Early() {
		m.warning = result.Status.Err()
	}
	m.weights = append([]float64(nil), result.X[:dim]...)
	m.intercept = result.X[dim]
	return nil
}

// Warning returns the optimiser's non-fatal error from the last Fit, if any.
func (m *LogisticRegression) Warning() error { return m.warning }

// PredictProba returns the probability of class 1 for each row.
func (m *LogisticRegression) PredictProba(x [][]float64) ([]float64, error) {
	if m.weights == nil {
		return nil, ErrNotFitted
	}
	out := make([]float64, len(x))
	for i, row := range x {
		if len(row) != len(m.weights) {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimensionMismatch, i, len(row), len(m.weights))
		}
		out[i] = sigmoid(floats.Dot(m.weights, m.transform(row)) + m.intercept)
	}
	return out, nil
}

// Predict returns 1 where the class-1 probability exceeds 0.5.
func (m *LogisticRegression) Predict(x [][]float64) ([]int, error) {
	probs, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(probs))
	for i, p := range probs {
		if p > 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

// Coefficients returns the fitted weights on standardised features.
func (m *LogisticRegression) Coefficients() []float64 {
	return append([]float64(nil), m.weights...)
}

// Intercept returns the fitted bias.
func (m *LogisticRegression) Intercept() float64 { return m.intercept }

func (m *LogisticRegression) standardize(x [][]float64, dim int) {
	m.mean = make([]float64, dim)
	m.scale = make([]float64, dim)
	col := make([]float64, len(x))
	for j := 0; j < dim; j++ {
		for i, row := range x {
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		m.mean[j], m.scale[j] = mean, std
	}
}

func (m *LogisticRegression) transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - m.mean[j]) / m.scale[j]
	}
	return out
}

// Accuracy returns the share of matching labels, in [0, 1].
func Accuracy(yTrue, yPred []int) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, ErrEmptyDataset
	}
	hits := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(yTrue)), nil
}

func sigmoid(t float64) float64 {
	if t >= 0 {
		return 1 / (1 + math.Exp(-t))
	}
	e := math.Exp(t)
	return e / (1 + e)
}

// softplus computes log(1+exp(t)) without overflow.
func softplus(t float64) float64 {
	if t > 0 {
		return t + math.Log1p(math.Exp(-t))
	}
	return math.Log1p(math.Exp(t))
}
