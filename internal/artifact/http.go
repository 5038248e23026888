package artifact

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

type httpStore struct {
	client *resty.Client
}

func newHTTPStore(timeout time.Duration) *httpStore {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &httpStore{client: client}
}

func (h *httpStore) Get(ctx context.Context, u *url.URL) ([]byte, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get(u.String())
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return resp.Body(), nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("download: status %d", resp.StatusCode())
	}
}
