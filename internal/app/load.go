package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/saqibullah/symptom-disease-predictor/internal/artifact"
	"github.com/saqibullah/symptom-disease-predictor/internal/classifier"
	"github.com/saqibullah/symptom-disease-predictor/internal/features"
)

// Fetcher reads artifacts; *artifact.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (string, []byte, error)
}

// Sources names the artifacts to load.
type Sources struct {
	Vocabulary      string
	Model           string
	ONNXLibraryPath string
}

// Load fetches the vocabulary and the model concurrently and assembles the
// App. Any failure is returned; the caller is expected to abort startup.
func Load(ctx context.Context, src Sources, fetcher Fetcher, log *slog.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	var (
		vocab *features.Vocabulary
		clf   classifier.Classifier
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		name, data, err := fetcher.Fetch(gctx, src.Vocabulary)
		if err != nil {
			return fmt.Errorf("load symptom vocabulary: %w", err)
		}
		vocab, err = features.ParseVocabulary(name, data)
		if err != nil {
			return fmt.Errorf("load symptom vocabulary: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		_, data, err := fetcher.Fetch(gctx, src.Model)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		loader := &classifier.Loader{
			Fetch: func(ctx context.Context, ref string) ([]byte, error) {
				_, b, err := fetcher.Fetch(ctx, artifact.Resolve(src.Model, ref))
				return b, err
			},
			ONNXLibraryPath: src.ONNXLibraryPath,
			Logger:          log,
		}
		clf, err = loader.Load(gctx, data)
		if err != nil {
			return fmt.Errorf("load model: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		closeClassifier(clf)
		return nil, err
	}

	a, err := New(vocab, clf, log, opts...)
	if err != nil {
		closeClassifier(clf)
		return nil, err
	}

	log.Info("model ready",
		slog.Int("symptoms", vocab.Len()),
		slog.String("classifier", fmt.Sprintf("%T", clf)))
	return a, nil
}

func closeClassifier(clf classifier.Classifier) {
	if c, ok := clf.(io.Closer); ok {
		_ = c.Close()
	}
}
