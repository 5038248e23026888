package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

const (
	KindDecisionTree    = "decision_tree"
	KindRandomForest    = "random_forest"
	KindBernoulliNB     = "bernoulli_nb"
	KindNearestCentroid = "nearest_centroid"
	KindONNX            = "onnx"
	KindRemote          = "remote"
)

// Manifest is the on-disk description of a trained model. Which fields are
// used depends on Kind.
type Manifest struct {
	Kind      string   `json:"kind"`
	Classes   []string `json:"classes"`
	NFeatures int      `json:"n_features"`

	// decision_tree
	Tree *Tree `json:"tree,omitempty"`
	// random_forest
	Estimators []Tree `json:"estimators,omitempty"`

	// bernoulli_nb
	ClassLogPrior  []float64   `json:"class_log_prior,omitempty"`
	FeatureLogProb [][]float64 `json:"feature_log_prob,omitempty"`

	// nearest_centroid
	Centroids [][]float64 `json:"centroids,omitempty"`

	// onnx
	Model             string `json:"model,omitempty"`
	Input             string `json:"input,omitempty"`
	LabelOutput       string `json:"label_output,omitempty"`
	ProbabilityOutput string `json:"probability_output,omitempty"`

	// remote
	URL     string `json:"url,omitempty"`
	Timeout string `json:"timeout,omitempty"`
}

// Loader builds classifiers from manifests.
type Loader struct {
	// Fetch reads an artifact referenced by the manifest, such as an ONNX
	// graph. It is only needed for kinds that reference other artifacts.
	Fetch func(ctx context.Context, ref string) ([]byte, error)
	// ONNXLibraryPath overrides the onnxruntime shared library location.
	ONNXLibraryPath string
	Logger          *slog.Logger
}

// ParseManifest decodes a manifest without building the model.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model manifest: %w", err)
	}
	if m.NFeatures <= 0 {
		return nil, fmt.Errorf("model manifest: n_features must be positive, got %d", m.NFeatures)
	}
	return &m, nil
}

// Load decodes a manifest and builds the classifier it describes.
func (l *Loader) Load(ctx context.Context, data []byte) (Classifier, error) {
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}

	if m.Kind != KindRemote && len(m.Classes) == 0 {
		return nil, fmt.Errorf("model manifest: %s model has no classes", m.Kind)
	}

	switch m.Kind {
	case KindDecisionTree:
		if m.Tree == nil {
			return nil, fmt.Errorf("model manifest: decision_tree without tree")
		}
		dt, err := NewDecisionTree(*m.Tree, m.Classes, m.NFeatures)
		if err != nil {
			return nil, err
		}
		return dt, nil
	case KindRandomForest:
		rf, err := NewRandomForest(m.Estimators, m.Classes, m.NFeatures)
		if err != nil {
			return nil, err
		}
		return rf, nil
	case KindBernoulliNB:
		nb, err := NewBernoulliNB(m.ClassLogPrior, m.FeatureLogProb, m.Classes, m.NFeatures)
		if err != nil {
			return nil, err
		}
		return nb, nil
	case KindNearestCentroid:
		nc, err := NewNearestCentroid(m.Centroids, m.Classes, m.NFeatures)
		if err != nil {
			return nil, err
		}
		return nc, nil
	case KindONNX:
		if m.Model == "" {
			return nil, fmt.Errorf("model manifest: onnx kind requires model")
		}
		if l.Fetch == nil {
			return nil, fmt.Errorf("model manifest: onnx model %q cannot be fetched", m.Model)
		}
		graph, err := l.Fetch(ctx, m.Model)
		if err != nil {
			return nil, fmt.Errorf("fetch onnx graph: %w", err)
		}
		o, err := NewONNX(graph, ONNXOptions{
			LibraryPath:       l.ONNXLibraryPath,
			Input:             m.Input,
			LabelOutput:       m.LabelOutput,
			ProbabilityOutput: m.ProbabilityOutput,
			Classes:           m.Classes,
			NFeatures:         m.NFeatures,
		})
		if err != nil {
			return nil, err
		}
		return o, nil
	case KindRemote:
		timeout := 10 * time.Second
		if m.Timeout != "" {
			d, err := time.ParseDuration(m.Timeout)
			if err != nil {
				return nil, fmt.Errorf("model manifest: invalid timeout %q: %w", m.Timeout, err)
			}
			timeout = d
		}
		r, err := NewRemote(m.URL, m.NFeatures, timeout, l.logger())
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
