package classify

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/okian/podium/internal/domain/model"
)

// Target decides which records are the positive class.
type Target string

// Supported targets.
const (
	TargetGold           Target = "gold"
	TargetSilverOrBetter Target = "silver_or_better"
)

// ParseTarget validates a target name.
func ParseTarget(s string) (Target, error) {
	switch t := Target(s); t {
	case TargetGold, TargetSilverOrBetter:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTarget, s)
	}
}

// Label returns 1 if the medal belongs to the positive class.
func (t Target) Label(medal string) int {
	switch {
	case medal == model.Gold:
		return 1
	case medal == model.Silver && t == TargetSilverOrBetter:
		return 1
	default:
		return 0
	}
}

// Feature names, in column order of the design matrix.
var Features = []string{"Country_Code", "Sport_Code", "Gender_Code", "Year"}

// FeatureImportance is the magnitude of a fitted coefficient.
type FeatureImportance struct {
	Feature     string  `json:"feature"`
	Coefficient float64 `json:"coefficient"`
	Importance  float64 `json:"importance"`
}

// Result summarises a fitted and evaluated model.
type Result struct {
	Target     Target              `json:"target"`
	Accuracy   float64             `json:"accuracy"`
	TrainSize  int                 `json:"train_size"`
	TestSize   int                 `json:"test_size"`
	Positives  int                 `json:"positives"`
	Negatives  int                 `json:"negatives"`
	Intercept  float64             `json:"intercept"`
	Importance []FeatureImportance `json:"importance"`

	// Predictor scores new feature rows with the fitted model.
	Predictor *Predictor `json:"-"`
	// Warning is the optimiser's non-fatal error, if it stopped early.
	Warning error `json:"-"`
}

// Option configures Analyze.
type Option func(*options)

type options struct {
	testFraction float64
	seed         int64
	target       Target
	model        []ModelOption
}

// WithTestFraction sets the share of rows held out for evaluation.
func WithTestFraction(f float64) Option {
	return func(o *options) { o.testFraction = f }
}

// WithSeed sets the shuffle seed of the split.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithTarget sets the positive class.
func WithTarget(t Target) Option {
	return func(o *options) { o.target = t }
}

// WithModelOptions passes options to the underlying model.
func WithModelOptions(opts ...ModelOption) Option {
	return func(o *options) { o.model = append(o.model, opts...) }
}

// Encode builds the design matrix from records: label-encoded country,
// sport and gender, plus the year.
func Encode(records []model.Record) [][]float64 {
	x, _ := NewEncoder(records).Matrix(records)
	return x
}

// Analyze encodes the records, splits them, fits the model on the training
// rows and scores it on the test rows.
func Analyze(records []model.Record, opts ...Option) (Result, error) {
	o := options{testFraction: 0.3, seed: 42, target: TargetGold}
	for _, opt := range opts {
		opt(&o)
	}
	if _, err := ParseTarget(string(o.target)); err != nil {
		return Result{}, err
	}
	if len(records) == 0 {
		return Result{}, ErrEmptyDataset
	}

	enc := NewEncoder(records)
	x, err := enc.Matrix(records)
	if err != nil {
		return Result{}, err
	}
	y := make([]int, len(records))
	res := Result{Target: o.target}
	for i, r := range records {
		y[i] = o.target.Label(r.Medal)
		if y[i] == 1 {
			res.Positives++
		} else {
			res.Negatives++
		}
	}

	train, test, err := TrainTestSplit(len(records), o.testFraction, o.seed)
	if err != nil {
		return res, err
	}
	res.TrainSize, res.TestSize = len(train), len(test)
	xTrain, yTrain := subset(x, y, train)
	xTest, yTest := subset(x, y, test)

	m := NewLogisticRegression(o.model...)
	if err := m.Fit(xTrain, yTrain); err != nil {
		return res, err
	}
	res.Warning = m.Warning()
	res.Predictor = &Predictor{target: o.target, enc: enc, model: m}
	pred, err := m.Predict(xTest)
	if err != nil {
		return res, err
	}
	if res.Accuracy, err = Accuracy(yTest, pred); err != nil {
		return res, err
	}

	res.Intercept = m.Intercept()
	for j, c := range m.Coefficients() {
		res.Importance = append(res.Importance, FeatureImportance{
			Feature:     Features[j],
			Coefficient: c,
			Importance:  math.Abs(c),
		})
	}
	slices.SortStableFunc(res.Importance, func(a, b FeatureImportance) int {
		return cmp.Compare(b.Importance, a.Importance)
	})
	return res, nil
}

func subset(x [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, k := range idx {
		xs[i], ys[i] = x[k], y[k]
	}
	return xs, ys
}
