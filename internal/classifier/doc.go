// Package classifier holds the pre-trained disease models the service
// serves. A model is described by a JSON manifest produced by the offline
// training pipeline; Load turns it into a Classifier.
//
// Every model predicts a label. Models that can estimate how likely that
// label is also implement ConfidenceEstimator; callers must treat its
// absence, or ErrConfidenceUnavailable, as a normal capability gap.
package classifier
