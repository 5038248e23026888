package classifier

import (
	"context"
	"fmt"

	"github.com/saqibullah/symptom-disease-predictor/internal/features"
)

// NearestCentroid assigns the class whose centroid is closest in Euclidean
// distance. It has no probability model and does not implement
// ConfidenceEstimator.
type NearestCentroid struct {
	centroids [][]float64
	classes   []string
	nFeatures int
}

func NewNearestCentroid(centroids [][]float64, classes []string, nFeatures int) (*NearestCentroid, error) {
	if len(centroids) != len(classes) {
		return nil, fmt.Errorf("nearest_centroid: %d centroids for %d classes", len(centroids), len(classes))
	}
	for c, row := range centroids {
		if len(row) != nFeatures {
			return nil, fmt.Errorf("nearest_centroid: centroid %d has %d features: %w", c, len(row), ErrDimensionMismatch)
		}
	}
	return &NearestCentroid{centroids: centroids, classes: classes, nFeatures: nFeatures}, nil
}

func (n *NearestCentroid) NumFeatures() int { return n.nFeatures }

func (n *NearestCentroid) Predict(_ context.Context, x *features.Vector) (string, error) {
	if err := checkLen(x, n.nFeatures); err != nil {
		return "", err
	}
	values := x.Values()
	best, bestDist := 0, -1.0
	for c, centroid := range n.centroids {
		var d float64
		for j, v := range centroid {
			diff := values[j] - v
			d += diff * diff
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return n.classes[best], nil
}
