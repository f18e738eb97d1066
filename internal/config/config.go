package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend selects which object storage client lists keys.
type Backend string

const (
	BackendS3    Backend = "s3"
	BackendMinIO Backend = "minio"
)

// Config holds application configuration read from the environment.
type Config struct {
	Backend Backend

	// S3 backend; credentials come from the AWS default chain.
	S3Region   string
	S3Endpoint string

	// MinIO backend.
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIORegion    string
	MinIOUseSSL    bool

	ListTimeout    time.Duration
	ListMaxRetries int
	LogLevel       slog.Level
}

type ErrMissingRequiredEnvVar struct {
	Name string
}

func (e *ErrMissingRequiredEnvVar) Error() string {
	return fmt.Sprintf("required environment variable %q is not set", e.Name)
}

type ErrInvalidEnvVar struct {
	Name   string
	Value  string
	Reason string
}

func (e *ErrInvalidEnvVar) Error() string {
	return fmt.Sprintf("environment variable %q has invalid value %q: %s", e.Name, e.Value, e.Reason)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", &ErrMissingRequiredEnvVar{Name: key}
	}
	return v, nil
}

// Load reads configuration from environment variables.
// Returns an error if required variables are missing or malformed.
func Load() (*Config, error) {
	config := Config{
		Backend:     Backend(strings.ToLower(getEnv("STORAGE_BACKEND", string(BackendS3)))),
		S3Region:    os.Getenv("AWS_REGION"),
		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		MinIORegion: getEnv("MINIO_REGION", "us-east-1"),
		MinIOUseSSL: os.Getenv("MINIO_USE_SSL") == "true",
	}

	switch config.Backend {
	case BackendS3:
	case BackendMinIO:
		var err error
		if config.MinIOEndpoint, err = requireEnv("MINIO_ENDPOINT"); err != nil {
			return nil, err
		}
		if config.MinIOAccessKey, err = requireEnv("MINIO_ACCESS_KEY"); err != nil {
			return nil, err
		}
		if config.MinIOSecretKey, err = requireEnv("MINIO_SECRET_KEY"); err != nil {
			return nil, err
		}
	default:
		return nil, &ErrInvalidEnvVar{Name: "STORAGE_BACKEND", Value: string(config.Backend), Reason: "must be s3 or minio"}
	}

	timeout := getEnv("LIST_TIMEOUT", "5m")
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return nil, &ErrInvalidEnvVar{Name: "LIST_TIMEOUT", Value: timeout, Reason: "must be a positive duration"}
	}
	config.ListTimeout = d

	retries := getEnv("LIST_MAX_RETRIES", "3")
	n, err := strconv.Atoi(retries)
	if err != nil || n < 0 {
		return nil, &ErrInvalidEnvVar{Name: "LIST_MAX_RETRIES", Value: retries, Reason: "must be a non-negative integer"}
	}
	config.ListMaxRetries = n

	level := getEnv("LOG_LEVEL", "info")
	if err := config.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, &ErrInvalidEnvVar{Name: "LOG_LEVEL", Value: level, Reason: "must be debug, info, warn or error"}
	}

	return &config, nil
}
