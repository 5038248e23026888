package classifier

import (
	"context"
	"errors"
	"math"

	"github.com/saqibullah/symptom-disease-predictor/internal/features"
)

var (
	// ErrConfidenceUnavailable means the model cannot score its prediction.
	ErrConfidenceUnavailable = errors.New("classifier does not estimate confidence")
	// ErrDimensionMismatch is returned when a vector or model shape does not
	// match the expected number of features.
	ErrDimensionMismatch = errors.New("feature dimension mismatch")
	// ErrUnknownKind is returned for manifests naming an unsupported model kind.
	ErrUnknownKind = errors.New("unknown model kind")
)

// Classifier maps a feature vector to a disease label.
type Classifier interface {
	Predict(ctx context.Context, x *features.Vector) (string, error)
	// NumFeatures is the vector length the model was trained on.
	NumFeatures() int
}

// ConfidenceEstimator is implemented by classifiers that produce class
// probabilities. Confidence returns the probability of the predicted
// label, in [0, 1].
type ConfidenceEstimator interface {
	Confidence(ctx context.Context, x *features.Vector) (float64, error)
}

// ProbabilisticClassifier produces the label and its confidence from a
// single inference, so the two always describe the same answer. The
// confidence is nil when the model could not score the label.
type ProbabilisticClassifier interface {
	PredictWithConfidence(ctx context.Context, x *features.Vector) (string, *float64, error)
}

// ValidConfidence reports whether p is a probability.
func ValidConfidence(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

func checkLen(x *features.Vector, n int) error {
	if x.Len() != n {
		return ErrDimensionMismatch
	}
	return nil
}

// argmax returns the index of the largest value, the lowest index on ties.
func argmax(xs []float64) int {
	best := 0
	for i := 1; i < len(xs); i++ {
		if xs[i] > xs[best] {
			best = i
		}
	}
	return best
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[argmax(xs)]
}
