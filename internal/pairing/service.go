package pairing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/exclusion"
	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/model"
	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/sampler"
	"github.com/kacper-wojtaszczyk/jackfruit/pairs-go/internal/urlfmt"
)

// Request contains the input parameters for one run.
type Request struct {
	Bucket        string
	Directory     string // empty lists the whole bucket
	URLPrefix     string
	NumPairs      int
	ExcludeFile   string // optional
	Mode          model.Mode
	IncludeBucket bool
}

// Validate checks the request before any network call is made.
func (r Request) Validate() error {
	if r.Bucket == "" {
		return &ValidationError{Field: "bucket", Reason: "must be provided"}
	}
	if r.URLPrefix == "" {
		return &ValidationError{Field: "url-prefix", Reason: "must be provided"}
	}
	if r.NumPairs < 0 {
		return &ValidationError{Field: "num-pairs", Reason: fmt.Sprintf("must not be negative, got %d", r.NumPairs)}
	}
	if err := r.Mode.Validate(); err != nil {
		return &ValidationError{Field: "mode", Reason: err.Error()}
	}
	return nil
}

// Result is the outcome of a successful run.
type Result struct {
	Records   []model.PairRecord
	Listed    int  // keys returned by the listing
	Available int  // keys left after exclusion
	Empty     bool // the prefix held no objects
}

// Lister enumerates object keys under a prefix.
type Lister interface {
	ListKeys(ctx context.Context, bucket, prefix string) (model.KeySet, error)
}

// Service runs the pipeline: list, exclude, sample, format.
type Service struct {
	lister      Lister
	sampler     *sampler.Sampler
	listTimeout time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithSampler replaces the randomly seeded sampler.
func WithSampler(s *sampler.Sampler) Option {
	return func(svc *Service) { svc.sampler = s }
}

// WithListTimeout bounds the listing stage.
func WithListTimeout(d time.Duration) Option {
	return func(svc *Service) { svc.listTimeout = d }
}

func NewService(lister Lister, opts ...Option) *Service {
	s := &Service{lister: lister, sampler: sampler.NewRandom()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces the full batch of records or an error; it never returns
// a partial batch.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	slog.DebugContext(ctx, "generation started", "bucket", req.Bucket, "prefix", req.Directory, "num_pairs", req.NumPairs, "mode", req.Mode)

	var (
		keys     model.KeySet
		excluded exclusion.Set
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		listCtx := gctx
		if s.listTimeout > 0 {
			var cancel context.CancelFunc
			listCtx, cancel = context.WithTimeout(gctx, s.listTimeout)
			defer cancel()
		}
		var err error
		keys, err = s.lister.ListKeys(listCtx, req.Bucket, req.Directory)
		return err
	})
	if req.ExcludeFile != "" {
		g.Go(func() error {
			var err error
			excluded, err = exclusion.Load(req.ExcludeFile)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Listed: len(keys)}
	if len(keys) == 0 {
		slog.WarnContext(ctx, "no objects found under prefix, nothing to pair", "bucket", req.Bucket, "prefix", req.Directory)
		result.Empty = true
		result.Records = []model.PairRecord{}
		return result, nil
	}

	available := exclusion.Apply(keys, excluded, req.Directory)
	result.Available = len(available)

	slog.InfoContext(ctx, "keys listed", "bucket", req.Bucket, "prefix", req.Directory,
		"listed", len(keys), "excluded", len(keys)-len(available), "available", len(available))

	idx, err := s.sampler.Sample(len(available), req.NumPairs, req.Mode)
	if err != nil {
		return Result{}, fmt.Errorf("sample s3://%s/%s: %w", req.Bucket, req.Directory, err)
	}

	formatter := urlfmt.Formatter{Prefix: req.URLPrefix, Bucket: req.Bucket, IncludeBucket: req.IncludeBucket}
	result.Records = formatter.Records(available.Resolve(idx))

	slog.InfoContext(ctx, "generation complete", "pairs", len(result.Records))
	return result, nil
}
