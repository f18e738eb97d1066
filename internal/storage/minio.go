package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/model"
)

// MinIOConfig holds MinIO connection settings.
type MinIOConfig struct {
	Endpoint  string // e.g., "localhost:9000"
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// NewMinIOClient creates a new MinIO client. No request is made until the
// client is used.
func NewMinIOClient(cfg MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

// MinIOLister lists keys through a MinIO client. A failed attempt restarts
// the listing from scratch under the retry policy.
type MinIOLister struct {
	client *minio.Client
	retry  RetryPolicy
}

// NewMinIOLister creates a lister over client.
func NewMinIOLister(client *minio.Client, policy RetryPolicy) *MinIOLister {
	return &MinIOLister{client: client, retry: policy}
}

// ListKeys returns every object key under prefix. A missing bucket is
// reported as ErrBucketNotFound rather than an empty listing.
func (m *MinIOLister) ListKeys(ctx context.Context, bucket, prefix string) (model.KeySet, error) {
	var keys model.KeySet
	err := m.retry.do(ctx, func() error {
		k, err := m.listOnce(ctx, bucket, prefix)
		if err != nil {
			return err
		}
		keys = k
		return nil
	})
	if err != nil {
		return nil, &ListingError{Bucket: bucket, Prefix: prefix, Err: err}
	}

	slog.DebugContext(ctx, "listing complete", "bucket", bucket, "prefix", prefix, "keys", len(keys))
	return keys, nil
}

func (m *MinIOLister) listOnce(ctx context.Context, bucket, prefix string) (model.KeySet, error) {
	// Cancelling stops the listing goroutine if we return early.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, classifyMinIOError(err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}

	collector := newKeyCollector()
	for obj := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, classifyMinIOError(obj.Err)
		}
		collector.add(obj.Key)
	}
	return collector.KeySet(), nil
}

func classifyMinIOError(err error) error {
	return classifyCode(minio.ToErrorResponse(err).Code, err)
}
