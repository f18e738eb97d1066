package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/config"
	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/exclusion"
	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/exitcode"
	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/model"
	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/output"
	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/pairing"
	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/sampler"
	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/storage"
)

// options is everything taken from the command line.
type options struct {
	req         pairing.Request
	format      model.Format
	seed        *uint64
	runID       model.RunID
	listTimeout time.Duration
}

func main() {
	// Records go to stdout, so logs go to stderr.
	slog.SetDefault(newLogger(os.Stderr, slog.LevelInfo))

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(exitcode.Success)
	}
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		fmt.Fprintf(os.Stderr, "Usage: %v\n", err)
		os.Exit(exitcode.ConfigError)
	}

	// Ensure environment variables are loaded
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitcode.ConfigError)
	}
	opts.listTimeout = cfg.ListTimeout

	if opts.runID == "" {
		if opts.runID, err = model.NewRunID(); err != nil {
			slog.Error("failed to generate run-id", "error", err)
			os.Exit(exitcode.ApplicationError)
		}
	}
	slog.SetDefault(newLogger(os.Stderr, cfg.LogLevel).With("run_id", opts.runID.String()))

	// Create a cancellable context (for graceful shutdown)
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	lister, err := newLister(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize storage client", "backend", cfg.Backend, "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitcode.ConfigError)
	}

	if err := run(ctx, opts, lister, os.Stdout, os.Stderr); err != nil {
		code := exitCodeFor(err)
		slog.Error("application error", "error", err, "exit_code", code)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		cancel()
		os.Exit(code)
	}

	slog.Debug("shutdown complete")
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// parseFlags reads and validates the command line. Network calls are never
// made from here.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("pairs", flag.ContinueOnError)
	fs.SetOutput(stderr)

	numPairs := fs.Int("num-pairs", 0, "Number of pairs to generate (required)")
	bucket := fs.String("bucket", "", "Name of the bucket (required)")
	directory := fs.String("directory", "", `Prefix within the bucket, e.g. "image/" (required)`)
	urlPrefix := fs.String("url-prefix", "", `String prepended to each key, e.g. "https://api.example.com/s3/api/v1/resource?url=s3://" (required)`)
	excludeFile := fs.String("exclude-file", "", "File with one key per line to exclude")
	mode := fs.String("mode", string(model.ModeCombination), "Uniqueness rule: combination (no repeated pair) or disjoint (no repeated key)")
	format := fs.String("format", string(model.FormatLines), "Output format: lines (source<TAB>candidate) or json")
	includeBucket := fs.Bool("include-bucket", false, `Insert "bucket/" between the url prefix and the key`)
	runID := fs.String("run-id", "", "Run identifier (UUIDv7); generated when empty")

	var seed *uint64
	fs.Func("seed", "Seed for reproducible sampling (unsigned integer)", func(s string) error {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("seed must be an unsigned integer")
		}
		seed = &v
		return nil
	})

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return options{}, err
		}
		return options{}, &pairing.ValidationError{Field: "flags", Reason: err.Error()}
	}
	if fs.NArg() > 0 {
		return options{}, &pairing.ValidationError{Field: "flags", Reason: fmt.Sprintf("unexpected arguments: %v", fs.Args())}
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, name := range []string{"num-pairs", "bucket", "directory", "url-prefix"} {
		if !set[name] {
			return options{}, &pairing.ValidationError{Field: name, Reason: "flag is required"}
		}
	}

	opts := options{
		req: pairing.Request{
			Bucket:        *bucket,
			Directory:     *directory,
			URLPrefix:     *urlPrefix,
			NumPairs:      *numPairs,
			ExcludeFile:   *excludeFile,
			Mode:          model.Mode(*mode),
			IncludeBucket: *includeBucket,
		},
		format: model.Format(*format),
		seed:   seed,
		runID:  model.RunID(*runID),
	}

	if err := opts.req.Validate(); err != nil {
		return options{}, err
	}
	if err := opts.format.Validate(); err != nil {
		return options{}, &pairing.ValidationError{Field: "format", Reason: err.Error()}
	}
	if opts.runID != "" {
		if err := opts.runID.Validate(); err != nil {
			return options{}, &pairing.ValidationError{Field: "run-id", Reason: err.Error()}
		}
	}

	return opts, nil
}

func newLister(ctx context.Context, cfg *config.Config) (pairing.Lister, error) {
	switch cfg.Backend {
	case config.BackendMinIO:
		client, err := storage.NewMinIOClient(storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Region:    cfg.MinIORegion,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			return nil, err
		}
		policy := storage.DefaultRetryPolicy()
		policy.MaxRetries = uint64(cfg.ListMaxRetries)
		return storage.NewMinIOLister(client, policy), nil
	default:
		client, err := storage.NewS3Client(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Endpoint:   cfg.S3Endpoint,
			MaxRetries: cfg.ListMaxRetries,
			MaxBackoff: storage.DefaultRetryPolicy().MaxInterval,
		})
		if err != nil {
			return nil, err
		}
		return storage.NewS3Lister(client), nil
	}
}

// run generates the whole batch and only then writes it to stdout.
func run(ctx context.Context, opts options, lister pairing.Lister, stdout, stderr io.Writer) error {
	svcOpts := []pairing.Option{pairing.WithListTimeout(opts.listTimeout)}
	if opts.seed != nil {
		svcOpts = append(svcOpts, pairing.WithSampler(sampler.NewSeeded(*opts.seed)))
	}

	result, err := pairing.NewService(lister, svcOpts...).Generate(ctx, opts.req)
	if err != nil {
		return err
	}
	if result.Empty {
		fmt.Fprintf(stderr, "no objects found under s3://%s/%s, no pairs generated\n", opts.req.Bucket, opts.req.Directory)
	}

	return output.Write(stdout, opts.format, result.Records)
}

// exitCodeFor maps an error from parseFlags or run onto a process exit code.
func exitCodeFor(err error) int {
	var (
		validation   *pairing.ValidationError
		listing      *storage.ListingError
		fileErr      *exclusion.FileError
		insufficient *sampler.InsufficientKeysError
		capacity     *sampler.CapacityError
	)

	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &validation):
		return exitcode.ConfigError
	case errors.As(err, &fileErr):
		return exitcode.ExclusionError
	case errors.As(err, &insufficient), errors.As(err, &capacity):
		return exitcode.CapacityError
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return exitcode.NetworkError
	case errors.As(err, &listing):
		if listing.Permanent() {
			return exitcode.StorageError
		}
		return exitcode.NetworkError
	default:
		return exitcode.ApplicationError
	}
}
