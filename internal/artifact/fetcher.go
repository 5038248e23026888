package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when an artifact does not exist. It matches
	// os.ErrNotExist so local and remote misses can be handled alike.
	ErrNotFound = os.ErrNotExist
	// ErrUnsupportedScheme is returned for URLs no store is registered for.
	ErrUnsupportedScheme = errors.New("unsupported artifact scheme")
)

// Store reads raw artifact bytes for one URL scheme.
type Store interface {
	Get(ctx context.Context, u *url.URL) ([]byte, error)
}

// Config configures the stores a Fetcher registers by default.
type Config struct {
	Timeout time.Duration
	S3      S3Config
	MinIO   MinIOConfig
}

// Fetcher resolves artifact references to bytes.
type Fetcher struct {
	stores map[string]Store
	log    *slog.Logger
}

// NewFetcher registers the file, http(s), s3 and minio stores. Object store
// clients are created on first use.
func NewFetcher(cfg Config, log *slog.Logger) *Fetcher {
	if log == nil {
		log = slog.Default()
	}
	httpStore := newHTTPStore(cfg.Timeout)
	return &Fetcher{
		stores: map[string]Store{
			"file":  fileStore{},
			"http":  httpStore,
			"https": httpStore,
			"s3":    newS3Store(cfg.S3),
			"minio": newMinIOStore(cfg.MinIO),
		},
		log: log,
	}
}

// Register installs or replaces the store for scheme.
func (f *Fetcher) Register(scheme string, s Store) {
	f.stores[strings.ToLower(scheme)] = s
}

// Fetch reads ref, decompresses it when its name carries a compression
// suffix, and returns the bytes together with the name stripped of that
// suffix so callers can pick a decoder from the remaining extension.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (string, []byte, error) {
	u, err := parseRef(ref)
	if err != nil {
		return "", nil, err
	}
	store, ok := f.stores[u.Scheme]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	start := time.Now()
	raw, err := store.Get(ctx, u)
	if err != nil {
		return "", nil, fmt.Errorf("fetch %s: %w", ref, err)
	}

	name, data, err := Decompress(path.Base(u.Path), raw)
	if err != nil {
		return "", nil, fmt.Errorf("decompress %s: %w", ref, err)
	}

	f.log.Info("artifact loaded",
		slog.String("ref", ref),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", time.Since(start)))
	return name, data, nil
}

// Resolve interprets ref relative to the artifact at base. Absolute paths
// and full URLs are returned unchanged.
func Resolve(base, ref string) string {
	if strings.Contains(ref, "://") || filepath.IsAbs(ref) {
		return ref
	}
	if strings.Contains(base, "://") {
		if b, err := url.Parse(base); err == nil {
			if r, err := url.Parse(ref); err == nil {
				return b.ResolveReference(r).String()
			}
		}
	}
	return filepath.Join(filepath.Dir(base), ref)
}

func parseRef(ref string) (*url.URL, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty artifact reference")
	}
	if !strings.Contains(ref, "://") {
		return &url.URL{Scheme: "file", Path: ref}, nil
	}
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse artifact reference %q: %w", ref, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}
