package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config selects the AWS region and, for S3-compatible services, a
// custom endpoint. Credentials come from the default AWS chain.
type S3Config struct {
	Region       string
	Endpoint     string
	UsePathStyle bool
}

// s3Store reads s3://bucket/key references.
type s3Store struct {
	cfg S3Config

	once   sync.Once
	client *s3.Client
	err    error
}

func newS3Store(cfg S3Config) *s3Store {
	return &s3Store{cfg: cfg}
}

func (s *s3Store) init(ctx context.Context) {
	var opts []func(*awsconfig.LoadOptions) error
	if s.cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(s.cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		s.err = fmt.Errorf("load aws config: %w", err)
		return
	}
	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Endpoint)
		}
		o.UsePathStyle = s.cfg.UsePathStyle
	})
}

func (s *s3Store) Get(ctx context.Context, u *url.URL) ([]byte, error) {
	s.once.Do(func() { s.init(ctx) })
	if s.err != nil {
		return nil, s.err
	}

	bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 reference %q needs a bucket and key", u.String())
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNotFound
		}
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
