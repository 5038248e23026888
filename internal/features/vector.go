package features

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Vector is a binary feature vector aligned to a Vocabulary. The set of
// positions holding 1 is tracked alongside the dense values so sparse
// classifiers can skip the zeros.
type Vector struct {
	values []float64
	active *roaring.Bitmap
}

// NewVector returns an all-zero vector of length n.
func NewVector(n int) *Vector {
	return &Vector{
		values: make([]float64, n),
		active: roaring.New(),
	}
}

// VectorOf builds a vector from explicit 0/1 values. Any non-zero value is
// stored as 1.
func VectorOf(values ...float64) *Vector {
	v := NewVector(len(values))
	for i, x := range values {
		if x != 0 {
			v.Set(i)
		}
	}
	return v
}

// Set marks position i as present. Setting the same position twice is a no-op.
func (v *Vector) Set(i int) {
	v.values[i] = 1
	v.active.Add(uint32(i))
}

func (v *Vector) Len() int {
	return len(v.values)
}

func (v *Vector) At(i int) float64 {
	return v.values[i]
}

// Values exposes the dense representation. Callers must not modify it.
func (v *Vector) Values() []float64 {
	return v.values
}

// Float32 returns a dense float32 copy, the input type most inference
// runtimes expect.
func (v *Vector) Float32() []float32 {
	out := make([]float32, len(v.values))
	for i, x := range v.values {
		out[i] = float32(x)
	}
	return out
}

// Active returns the set positions in ascending order.
func (v *Vector) Active() []uint32 {
	return v.active.ToArray()
}

// Count is the number of set positions.
func (v *Vector) Count() int {
	return int(v.active.GetCardinality())
}
