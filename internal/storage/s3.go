package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/model"
)

// maxPageSize is the largest page ListObjectsV2 returns.
const maxPageSize = 1000

// S3Config holds AWS S3 connection settings.
type S3Config struct {
	Region     string // empty uses the SDK's default chain
	Endpoint   string // optional, switches to path-style addressing
	MaxRetries int
	MaxBackoff time.Duration
}

// NewS3Client creates an S3 client from the default AWS credential chain.
// Transient failures are retried by the SDK's standard retryer; permanent
// failures such as AccessDenied are not.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				o.MaxAttempts = cfg.MaxRetries + 1
				if cfg.MaxBackoff > 0 {
					o.MaxBackoff = cfg.MaxBackoff
				}
			})
		}),
	}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Lister lists keys with ListObjectsV2, following continuation tokens.
type S3Lister struct {
	client   s3.ListObjectsV2APIClient
	pageSize int32
}

// NewS3Lister creates a lister over any ListObjectsV2 implementation.
func NewS3Lister(client s3.ListObjectsV2APIClient) *S3Lister {
	return &S3Lister{client: client, pageSize: maxPageSize}
}

// ListKeys returns every object key under prefix.
func (l *S3Lister) ListKeys(ctx context.Context, bucket, prefix string) (model.KeySet, error) {
	paginator := s3.NewListObjectsV2Paginator(l.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}, func(o *s3.ListObjectsV2PaginatorOptions) {
		o.Limit = l.pageSize
	})

	collector := newKeyCollector()
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &ListingError{Bucket: bucket, Prefix: prefix, Err: classifyS3Error(err)}
		}
		pages++
		for _, obj := range page.Contents {
			collector.add(aws.ToString(obj.Key))
		}
		slog.DebugContext(ctx, "listed page", "bucket", bucket, "prefix", prefix, "page", pages, "objects", len(page.Contents))
	}

	keys := collector.KeySet()
	slog.DebugContext(ctx, "listing complete", "bucket", bucket, "prefix", prefix, "pages", pages, "keys", len(keys))
	return keys, nil
}

func classifyS3Error(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return classifyCode(apiErr.ErrorCode(), err)
	}
	return err
}
