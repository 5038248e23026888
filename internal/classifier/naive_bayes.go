package classifier

import (
	"context"
	"fmt"
	"math"

	"github.com/saqibullah/symptom-disease-predictor/internal/features"
)

// BernoulliNB is a naive Bayes model over binary features.
//
// The joint log-likelihood of class c is
//
//	prior[c] + sum_j absent[c][j] + sum_{j set} (present[c][j] - absent[c][j])
//
// so only the set positions of a vector are visited per request.
type BernoulliNB struct {
	classes   []string
	nFeatures int
	present   [][]float64 // log P(x_j = 1 | c)
	delta     [][]float64 // present - absent
	base      []float64   // prior + sum of absent
}

func NewBernoulliNB(classLogPrior []float64, featureLogProb [][]float64, classes []string, nFeatures int) (*BernoulliNB, error) {
	if len(classLogPrior) != len(classes) || len(featureLogProb) != len(classes) {
		return nil, fmt.Errorf("bernoulli_nb: parameters for %d/%d classes, want %d",
			len(classLogPrior), len(featureLogProb), len(classes))
	}
	nb := &BernoulliNB{
		classes:   classes,
		nFeatures: nFeatures,
		present:   featureLogProb,
		delta:     make([][]float64, len(classes)),
		base:      make([]float64, len(classes)),
	}
	for c, row := range featureLogProb {
		if len(row) != nFeatures {
			return nil, fmt.Errorf("bernoulli_nb: class %d has %d features: %w", c, len(row), ErrDimensionMismatch)
		}
		nb.delta[c] = make([]float64, nFeatures)
		nb.base[c] = classLogPrior[c]
		for j, lp := range row {
			if lp >= 0 || math.IsNaN(lp) {
				return nil, fmt.Errorf("bernoulli_nb: class %d feature %d: log probability %v is not negative", c, j, lp)
			}
			absent := math.Log1p(-math.Exp(lp))
			nb.base[c] += absent
			nb.delta[c][j] = lp - absent
		}
	}
	return nb, nil
}

func (nb *BernoulliNB) NumFeatures() int { return nb.nFeatures }

func (nb *BernoulliNB) jointLogLikelihood(x *features.Vector) []float64 {
	jll := make([]float64, len(nb.classes))
	active := x.Active()
	for c := range nb.classes {
		sum := nb.base[c]
		for _, j := range active {
			sum += nb.delta[c][j]
		}
		jll[c] = sum
	}
	return jll
}

func (nb *BernoulliNB) Predict(_ context.Context, x *features.Vector) (string, error) {
	if err := checkLen(x, nb.nFeatures); err != nil {
		return "", err
	}
	return nb.classes[argmax(nb.jointLogLikelihood(x))], nil
}

// Confidence is the softmax of the joint log-likelihoods at the best class.
func (nb *BernoulliNB) Confidence(_ context.Context, x *features.Vector) (float64, error) {
	if err := checkLen(x, nb.nFeatures); err != nil {
		return 0, err
	}
	jll := nb.jointLogLikelihood(x)
	best := jll[argmax(jll)]
	var sum float64
	for _, v := range jll {
		sum += math.Exp(v - best)
	}
	return 1 / sum, nil
}
