package artifact

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOConfig addresses a MinIO (or other S3-compatible) server with static
// credentials.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// minioStore reads minio://bucket/key references.
type minioStore struct {
	cfg MinIOConfig

	once   sync.Once
	client *minio.Client
	err    error
}

func newMinIOStore(cfg MinIOConfig) *minioStore {
	return &minioStore{cfg: cfg}
}

func (m *minioStore) init() {
	if m.cfg.Endpoint == "" {
		m.err = fmt.Errorf("minio endpoint is not configured")
		return
	}
	m.client, m.err = minio.New(m.cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(m.cfg.AccessKey, m.cfg.SecretKey, ""),
		Secure: m.cfg.UseSSL,
	})
}

func (m *minioStore) Get(ctx context.Context, u *url.URL) ([]byte, error) {
	m.once.Do(m.init)
	if m.err != nil {
		return nil, m.err
	}

	bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("minio reference %q needs a bucket and key", u.String())
	}

	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinIOErr(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapMinIOErr(err)
	}
	return data, nil
}

func mapMinIOErr(err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
		return ErrNotFound
	}
	return err
}
