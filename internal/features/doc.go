// Package features turns free-form symptom names into the fixed-length binary
// feature vectors the disease classifier was trained on.
//
// A Vocabulary fixes the layout of every vector: position i is 1 when the
// i-th vocabulary symptom was reported. Inputs are normalized before lookup
// (lowercased, trimmed, inner spaces replaced with underscores), which is the
// canonical form the vocabulary tokens are stored in.
package features
