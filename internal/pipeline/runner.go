package pipeline

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/assetbuilder/internal/asset"
	"git.home.luguber.info/inful/assetbuilder/internal/cache"
	"git.home.luguber.info/inful/assetbuilder/internal/fingerprint"
	"git.home.luguber.info/inful/assetbuilder/internal/history"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
)

// Cache is the outcome cache a Runner consults.
type Cache = cache.Cache[*Result]

// NewCache returns an empty outcome cache.
func NewCache() *Cache { return cache.New[*Result]() }

// Request is a pipeline invocation plus the tag it is reported under.
type Request struct {
	Tag string
	Input
}

// Runner fingerprints requests, replays cached outcomes and runs the pipeline on a miss.
type Runner struct {
	pipeline *Pipeline
	cache    *Cache
	history  history.Store
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithHistory records every run, cache hits included, in store.
func WithHistory(store history.Store) RunnerOption {
	return func(r *Runner) { r.history = store }
}

// NewRunner creates a runner. A nil cache gets a private one.
func NewRunner(p *Pipeline, c *Cache, opts ...RunnerOption) *Runner {
	if c == nil {
		c = NewCache()
	}
	r := &Runner{pipeline: p, cache: c}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run returns the outcome for req and whether it came from the cache.
//
// A cached failure is returned again as-is; only ClearCache lets the same
// inputs run again. Fingerprint failures and cancellation are not cached.
// Concurrent misses on one fingerprint both run; the later Put wins.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, bool, error) {
	start := time.Now()
	logger := r.pipeline.logger.With(logfields.Tag(req.Tag), logfields.Prefix(req.Prefix))
	rec := r.pipeline.recorder

	key, err := fingerprint.Compute(req.Source, req.Manifest, req.Options)
	if err != nil {
		logger.Error("Failed to generate fingerprint from manifest", logfields.Error(err))
		rec.IncPipelineOutcome(req.Prefix, metrics.OutcomeFailed)
		r.record(ctx, logger, req, "", false, nil, err, start)
		return nil, false, err
	}
	logger = logger.With(logfields.Fingerprint(key))

	if o, ok := r.cache.Get(key); ok {
		rec.IncCacheLookup(true)
		rec.IncPipelineOutcome(req.Prefix, metrics.OutcomeCached)
		rec.ObservePipelineDuration(req.Prefix, time.Since(start))
		logger.Debug("Using cached pipeline", logfields.Cached(true), logfields.Error(o.Err))
		r.record(ctx, logger, req, key, true, o.Value, o.Err, start)
		return o.Value, true, o.Err
	}
	rec.IncCacheLookup(false)

	logger.Info("Processing manifest")
	res, err := r.pipeline.Process(ctx, req.Input)
	rec.ObservePipelineDuration(req.Prefix, time.Since(start))
	if err != nil {
		if ctx.Err() != nil && stderrors.Is(err, ctx.Err()) {
			rec.IncPipelineOutcome(req.Prefix, metrics.OutcomeCanceled)
		} else {
			rec.IncPipelineOutcome(req.Prefix, metrics.OutcomeFailed)
			r.cache.Put(key, cache.Outcome[*Result]{Err: err})
		}
		r.record(ctx, logger, req, key, false, nil, err, start)
		return nil, false, err
	}

	for _, a := range res.Assets {
		logger.Info("Saved asset",
			logfields.Asset(a.Filename),
			logfields.Path(filepath.Join(req.Destination, a.OutputPath)))
	}
	rec.IncPipelineOutcome(req.Prefix, metrics.OutcomeSuccess)
	r.cache.Put(key, cache.Outcome[*Result]{Value: res})
	r.record(ctx, logger, req, key, false, res, nil, start)
	return res, false, nil
}

// ClearCache drops every cached outcome.
func (r *Runner) ClearCache() {
	r.cache.Clear()
}

func (r *Runner) record(ctx context.Context, logger *slog.Logger, req Request, key string, cached bool, res *Result, runErr error, start time.Time) {
	if r.history == nil {
		return
	}
	run := history.Run{
		ID:          uuid.NewString(),
		Tag:         req.Tag,
		Prefix:      req.Prefix,
		Fingerprint: key,
		Cached:      cached,
		Outcome:     history.OutcomeSuccess,
		Duration:    time.Since(start),
		StartedAt:   start,
	}
	if res != nil {
		run.Assets = asset.Filenames(res.Assets)
	}
	if runErr != nil {
		run.Outcome = history.OutcomeFailed
		run.Error = runErr.Error()
		if ctx.Err() != nil && stderrors.Is(runErr, ctx.Err()) {
			run.Outcome = history.OutcomeCanceled
		}
	}
	// The caller's context may already be canceled; the record still matters.
	if err := r.history.Record(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("Failed to record run history", logfields.Error(err))
	}
}
