package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/saqibullah/symptom-disease-predictor/internal/features"
)

// Remote delegates inference to an HTTP model server. The server receives
// {"features": [...]} and answers {"prediction": "...", "confidence": 0.87};
// confidence is optional.
type Remote struct {
	client    *resty.Client
	url       string
	nFeatures int
	log       *slog.Logger
}

type remoteRequest struct {
	Features []float64 `json:"features"`
}

type remoteResponse struct {
	Prediction string   `json:"prediction"`
	Confidence *float64 `json:"confidence"`
}

func NewRemote(endpoint string, nFeatures int, timeout time.Duration, log *slog.Logger) (*Remote, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("remote: invalid inference server url %q", endpoint)
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Remote{client: client, url: endpoint, nFeatures: nFeatures, log: log}, nil
}

func (r *Remote) NumFeatures() int { return r.nFeatures }

func (r *Remote) call(ctx context.Context, x *features.Vector) (*remoteResponse, error) {
	if err := checkLen(x, r.nFeatures); err != nil {
		return nil, err
	}
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(remoteRequest{Features: x.Values()}).
		SetResult(&remoteResponse{}).
		Post(r.url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ML server: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		r.log.Warn("ML server returned non-200 status",
			slog.Int("status", resp.StatusCode()),
			slog.String("body", string(resp.Body())))
		return nil, fmt.Errorf("ML server error: status %d", resp.StatusCode())
	}
	out, ok := resp.Result().(*remoteResponse)
	if !ok || out.Prediction == "" {
		return nil, errors.New("ML server returned no prediction")
	}
	return out, nil
}

func (r *Remote) Predict(ctx context.Context, x *features.Vector) (string, error) {
	out, err := r.call(ctx, x)
	if err != nil {
		return "", err
	}
	return out.Prediction, nil
}

// PredictWithConfidence reads the label and the confidence from one
// response. A confidence outside [0, 1] is dropped.
func (r *Remote) PredictWithConfidence(ctx context.Context, x *features.Vector) (string, *float64, error) {
	out, err := r.call(ctx, x)
	if err != nil {
		return "", nil, err
	}
	return out.Prediction, r.confidence(out), nil
}

func (r *Remote) Confidence(ctx context.Context, x *features.Vector) (float64, error) {
	out, err := r.call(ctx, x)
	if err != nil {
		return 0, err
	}
	p := r.confidence(out)
	if p == nil {
		return 0, ErrConfidenceUnavailable
	}
	return *p, nil
}

func (r *Remote) confidence(out *remoteResponse) *float64 {
	if out.Confidence == nil {
		return nil
	}
	if !ValidConfidence(*out.Confidence) {
		r.log.Warn("ML server returned an invalid confidence",
			slog.Float64("confidence", *out.Confidence),
			slog.String("prediction", out.Prediction))
		return nil
	}
	return out.Confidence
}
