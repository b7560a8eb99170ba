// Package storage reads call recordings from S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	infraconfig "github.com/dibaisales/central/internal/infrastructure/config"
)

// Scheme is the URI scheme of object links, as in s3://bucket/key.
const Scheme = "s3"

// ErrInvalidURI is returned for links that are not s3://bucket/key.
var ErrInvalidURI = errors.New("invalid object URI")

// ErrObjectNotFound is returned when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectRef identifies one object.
type ObjectRef struct {
	Bucket string
	Key    string
}

// ParseURI splits s3://bucket/key.
func ParseURI(raw string) (ObjectRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ObjectRef{}, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	if u.Scheme != Scheme || u.Host == "" {
		return ObjectRef{}, fmt.Errorf("%w: %q", ErrInvalidURI, raw)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return ObjectRef{}, fmt.Errorf("%w: missing key in %q", ErrInvalidURI, raw)
	}
	return ObjectRef{Bucket: u.Host, Key: key}, nil
}

// S3ObjectStorage reads objects through the AWS SDK v2. It works with any
// S3-compatible backend (AWS S3, MinIO, R2).
type S3ObjectStorage struct {
	client *s3.Client
	logger *zap.Logger
}

// S3ObjectStorageOption is a functional option for configuring S3ObjectStorage
type S3ObjectStorageOption func(*S3ObjectStorage)

// WithLogger sets a custom logger for S3ObjectStorage
func WithLogger(logger *zap.Logger) S3ObjectStorageOption {
	return func(s *S3ObjectStorage) {
		s.logger = logger
	}
}

// NewS3ObjectStorage creates a reader from configuration. Static credentials
// are used when configured; otherwise the default AWS credential chain applies.
func NewS3ObjectStorage(ctx context.Context, cfg infraconfig.StorageConfig, opts ...S3ObjectStorageOption) (*S3ObjectStorage, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		if cfg.SecretAccessKey == "" {
			return nil, errors.New("storage secret access key is required with an access key id")
		}
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	s := &S3ObjectStorage{client: client, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Open streams the object. The caller closes the reader.
func (s *S3ObjectStorage) Open(ctx context.Context, ref ObjectRef) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrObjectNotFound, ref.Bucket, ref.Key)
		}
		s.logger.Warn("failed to get object",
			zap.String("bucket", ref.Bucket),
			zap.String("key", ref.Key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	return out.Body, nil
}

// OpenURI parses an s3:// link and opens the object.
func (s *S3ObjectStorage) OpenURI(ctx context.Context, uri string) (io.ReadCloser, error) {
	ref, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, ref)
}
