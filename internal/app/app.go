package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/saqibullah/symptom-disease-predictor/internal/classifier"
	"github.com/saqibullah/symptom-disease-predictor/internal/features"
)

const (
	// SampleSize is how many vocabulary entries a NoMatch error suggests.
	SampleSize = 20

	msgNoSymptoms = "No symptoms provided"
	msgNoMatch    = "No valid symptoms found. Please check symptom names."
	msgNoText     = "No text provided"
)

// Observer receives prediction outcomes; metrics.Collector implements it.
type Observer interface {
	ObservePrediction(outcome string, matched, unmatched int, d time.Duration)
}

// Prediction is the outcome of a successful prediction.
type Prediction struct {
	Disease string
	// Confidence is a percentage in [0, 100], nil when the classifier
	// cannot estimate it.
	Confidence *float64
	Matched    []string
	Unmatched  []string
}

// Message is the human-readable summary returned to callers.
func (p *Prediction) Message() string {
	return fmt.Sprintf("Based on your symptoms, you may have: %s. Please consult a doctor for proper diagnosis.", p.Disease)
}

// App is the immutable application context.
type App struct {
	vocab     *features.Vocabulary
	clf       classifier.Classifier
	extractor *features.Extractor
	log       *slog.Logger
	observer  Observer
}

type Option func(*App)

func WithObserver(o Observer) Option {
	return func(a *App) { a.observer = o }
}

// New assembles an App from loaded artifacts. The classifier must have been
// trained on exactly as many features as the vocabulary has tokens.
func New(vocab *features.Vocabulary, clf classifier.Classifier, log *slog.Logger, opts ...Option) (*App, error) {
	if vocab == nil {
		return nil, features.ErrEmptyVocabulary
	}
	if clf != nil && clf.NumFeatures() != vocab.Len() {
		return nil, fmt.Errorf("model expects %d features, vocabulary has %d: %w",
			clf.NumFeatures(), vocab.Len(), classifier.ErrDimensionMismatch)
	}
	if log == nil {
		log = slog.Default()
	}
	a := &App{
		vocab:     vocab,
		clf:       clf,
		extractor: features.NewExtractor(vocab),
		log:       log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Symptoms returns the vocabulary in vector order.
func (a *App) Symptoms() []string {
	return a.vocab.Tokens()
}

func (a *App) SymptomCount() int {
	return a.vocab.Len()
}

func (a *App) ModelLoaded() bool {
	return a.clf != nil
}

// Predict encodes symptoms and classifies them.
func (a *App) Predict(ctx context.Context, symptoms []string) (*Prediction, error) {
	start := time.Now()
	p, enc, err := a.predict(ctx, symptoms)
	if a.observer != nil {
		outcome := "success"
		if err != nil {
			outcome = string(KindOf(err))
		}
		a.observer.ObservePrediction(outcome, len(enc.Matched), len(enc.Unmatched), time.Since(start))
	}
	return p, err
}

func (a *App) predict(ctx context.Context, symptoms []string) (*Prediction, features.Encoding, error) {
	if len(symptoms) == 0 {
		return nil, features.Encoding{}, invalidInput(msgNoSymptoms)
	}

	enc := features.Encode(a.vocab, symptoms)
	if len(enc.Matched) == 0 {
		return nil, enc, &Error{
			Kind:    KindNoMatch,
			Message: msgNoMatch,
			Hint:    a.vocab.Sample(SampleSize),
		}
	}

	if a.clf == nil {
		return nil, enc, internalFault(errors.New("model is not loaded"))
	}

	label, confidence, err := a.classify(ctx, enc.Vector)
	if err != nil {
		a.log.Error("prediction failed", slog.String("error", err.Error()))
		return nil, enc, internalFault(err)
	}

	p := &Prediction{
		Disease:    label,
		Confidence: confidence,
		Matched:    enc.Matched,
		Unmatched:  enc.Unmatched,
	}
	a.log.Debug("prediction",
		slog.String("disease", p.Disease),
		slog.Int("matched", len(p.Matched)),
		slog.Int("unmatched", len(p.Unmatched)))
	return p, enc, nil
}

// classify predicts the label and, when the classifier can estimate it, the
// confidence as a percentage. Classifiers that score in the same inference
// are asked once.
func (a *App) classify(ctx context.Context, x *features.Vector) (string, *float64, error) {
	if pc, ok := a.clf.(classifier.ProbabilisticClassifier); ok {
		label, p, err := pc.PredictWithConfidence(ctx, x)
		if err != nil {
			return "", nil, err
		}
		if p == nil {
			return label, nil, nil
		}
		return label, a.percent(*p), nil
	}

	label, err := a.clf.Predict(ctx, x)
	if err != nil {
		return "", nil, err
	}
	return label, a.confidence(ctx, x), nil
}

// confidence returns nil when the classifier has no probability estimate.
// Failures other than the expected gap are logged but never fail the request.
func (a *App) confidence(ctx context.Context, x *features.Vector) *float64 {
	est, ok := a.clf.(classifier.ConfidenceEstimator)
	if !ok {
		return nil
	}
	p, err := est.Confidence(ctx, x)
	if err != nil {
		if !errors.Is(err, classifier.ErrConfidenceUnavailable) {
			a.log.Warn("confidence estimation failed", slog.String("error", err.Error()))
		}
		return nil
	}
	return a.percent(p)
}

func (a *App) percent(p float64) *float64 {
	if !classifier.ValidConfidence(p) {
		a.log.Warn("confidence is not a probability, omitting it", slog.Float64("confidence", p))
		return nil
	}
	pct := p * 100
	return &pct
}

// Extract lists the vocabulary symptoms mentioned in free text.
func (a *App) Extract(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalidInput(msgNoText)
	}
	return a.extractor.Extract(text), nil
}

// Close releases classifier resources such as an ONNX Runtime session.
func (a *App) Close() error {
	if c, ok := a.clf.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
