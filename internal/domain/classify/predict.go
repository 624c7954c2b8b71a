package classify

// Confidence buckets a predicted probability.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceOf returns high above 0.7, medium above 0.4 and low otherwise.
func ConfidenceOf(p float64) Confidence {
	switch {
	case p > 0.7:
		return ConfidenceHigh
	case p > 0.4:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Prediction is the model's estimate for one feature row.
type Prediction struct {
	Country     string     `json:"country"`
	Sport       string     `json:"sport"`
	Gender      string     `json:"gender"`
	Year        int        `json:"year"`
	Target      Target     `json:"target"`
	Probability float64    `json:"probability"`
	Positive    bool       `json:"positive"`
	Confidence  Confidence `json:"confidence"`
}

// Predictor pairs a fitted model with the encoder it was trained with.
type Predictor struct {
	target Target
	enc    *Encoder
	model  *LogisticRegression
}

// Encoder returns the feature encoder.
func (p *Predictor) Encoder() *Encoder { return p.enc }

// Predict returns the probability that a record with these features is in
// the target class.
func (p *Predictor) Predict(country, sport, gender string, year int) (Prediction, error) {
	if p == nil || p.model == nil {
		return Prediction{}, ErrNotFitted
	}
	row, err := p.enc.Row(country, sport, gender, year)
	if err != nil {
		return Prediction{}, err
	}
	proba, err := p.model.PredictProba([][]float64{row})
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{
		Country:     country,
		Sport:       sport,
		Gender:      gender,
		Year:        year,
		Target:      p.target,
		Probability: proba[0],
		Positive:    proba[0] > 0.5,
		Confidence:  ConfidenceOf(proba[0]),
	}, nil
}
