package classifier

import (
	"context"
	"fmt"

	"github.com/saqibullah/symptom-disease-predictor/internal/features"
)

// Tree is a fitted binary decision tree in the flat array layout used by
// scikit-learn's tree_ attribute. Node 0 is the root; a node is a leaf when
// ChildrenLeft is -1. Value holds per-class weights for every node.
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("tree has no nodes")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("tree arrays have inconsistent lengths")
	}
	for i := 0; i < n; i++ {
		if len(t.Value[i]) != nClasses {
			return fmt.Errorf("node %d: %d class weights, want %d", i, len(t.Value[i]), nClasses)
		}
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == -1 {
			continue
		}
		// Children always follow their parent, so traversal terminates.
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d: invalid children %d/%d", i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d: feature %d out of range: %w", i, f, ErrDimensionMismatch)
		}
	}
	return nil
}

func (t *Tree) leaf(x *features.Vector) int {
	node := 0
	for t.ChildrenLeft[node] != -1 {
		if x.At(t.Feature[node]) <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return node
}

func (t *Tree) proba(x *features.Vector) []float64 {
	weights := t.Value[t.leaf(x)]
	out := make([]float64, len(weights))
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return out
	}
	for i, w := range weights {
		out[i] = w / sum
	}
	return out
}

// DecisionTree is a single-tree classifier.
type DecisionTree struct {
	tree      Tree
	classes   []string
	nFeatures int
}

func NewDecisionTree(tree Tree, classes []string, nFeatures int) (*DecisionTree, error) {
	if err := tree.validate(nFeatures, len(classes)); err != nil {
		return nil, fmt.Errorf("decision_tree: %w", err)
	}
	return &DecisionTree{tree: tree, classes: classes, nFeatures: nFeatures}, nil
}

func (d *DecisionTree) NumFeatures() int { return d.nFeatures }

func (d *DecisionTree) Predict(_ context.Context, x *features.Vector) (string, error) {
	if err := checkLen(x, d.nFeatures); err != nil {
		return "", err
	}
	return d.classes[argmax(d.tree.proba(x))], nil
}

func (d *DecisionTree) Confidence(_ context.Context, x *features.Vector) (float64, error) {
	if err := checkLen(x, d.nFeatures); err != nil {
		return 0, err
	}
	return maxOf(d.tree.proba(x)), nil
}

// RandomForest averages the class probabilities of its trees.
type RandomForest struct {
	trees     []Tree
	classes   []string
	nFeatures int
}

func NewRandomForest(trees []Tree, classes []string, nFeatures int) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("random_forest: no estimators")
	}
	for i := range trees {
		if err := trees[i].validate(nFeatures, len(classes)); err != nil {
			return nil, fmt.Errorf("random_forest: estimator %d: %w", i, err)
		}
	}
	return &RandomForest{trees: trees, classes: classes, nFeatures: nFeatures}, nil
}

func (f *RandomForest) NumFeatures() int { return f.nFeatures }

func (f *RandomForest) proba(x *features.Vector) []float64 {
	avg := make([]float64, len(f.classes))
	for i := range f.trees {
		for c, p := range f.trees[i].proba(x) {
			avg[c] += p
		}
	}
	for c := range avg {
		avg[c] /= float64(len(f.trees))
	}
	return avg
}

func (f *RandomForest) Predict(_ context.Context, x *features.Vector) (string, error) {
	if err := checkLen(x, f.nFeatures); err != nil {
		return "", err
	}
	return f.classes[argmax(f.proba(x))], nil
}

func (f *RandomForest) Confidence(_ context.Context, x *features.Vector) (float64, error) {
	if err := checkLen(x, f.nFeatures); err != nil {
		return 0, err
	}
	return maxOf(f.proba(x)), nil
}
