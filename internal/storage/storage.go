// Package storage lists object keys from S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrBucketNotFound indicates that the bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrAccessDenied indicates that the credentials may not list the bucket.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidBucketName indicates that the bucket name was rejected.
	ErrInvalidBucketName = errors.New("invalid bucket name")
)

// permanentCodes maps S3 error codes that must not be retried.
var permanentCodes = map[string]error{
	"NoSuchBucket":          ErrBucketNotFound,
	"InvalidBucketName":     ErrInvalidBucketName,
	"AccessDenied":          ErrAccessDenied,
	"AllAccessDisabled":     ErrAccessDenied,
	"InvalidAccessKeyId":    ErrAccessDenied,
	"SignatureDoesNotMatch": ErrAccessDenied,
	"AccountProblem":        ErrAccessDenied,
}

// ListingError reports a failed listing of bucket/prefix.
type ListingError struct {
	Bucket string
	Prefix string
	Err    error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("list s3://%s/%s: %v", e.Bucket, e.Prefix, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

// Permanent reports whether retrying the listing cannot succeed.
func (e *ListingError) Permanent() bool {
	return isPermanent(e.Err)
}

func isPermanent(err error) bool {
	return errors.Is(err, ErrBucketNotFound) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, context.Canceled)
}

// classifyCode tags err with a sentinel when code is a known permanent failure.
func classifyCode(code string, err error) error {
	if sentinel, ok := permanentCodes[code]; ok {
		return fmt.Errorf("%w: %w", sentinel, err)
	}
	return err
}
