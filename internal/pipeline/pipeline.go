// Package pipeline runs manifests through the asset stages and caches the outcome.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/assetbuilder/internal/asset"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/manifest"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/plugin"
)

// Input describes one pipeline invocation.
type Input struct {
	Manifest    manifest.Manifest
	Prefix      string // bundle name and log context
	Source      string
	Destination string
	Type        string // output extension, e.g. ".js"
	Options     config.Options
}

// Result is a completed run. Results held by the cache are shared between
// callers and must be treated as read-only.
type Result struct {
	Assets []asset.Asset
	HTML   string
	RunID  string
}

// Pipeline executes the stage sequence using plugins from a registry.
type Pipeline struct {
	registry *plugin.Registry
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// New creates a pipeline bound to a plugin registry.
func New(reg *plugin.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: reg,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs every enabled stage in order and stops at the first failure.
// Cancellation is observed between stages only.
func (p *Pipeline) Process(ctx context.Context, in Input) (*Result, error) {
	in.Type = plugin.NormalizeFileType(in.Type)
	runID := uuid.NewString()
	st := &runState{
		in:       in,
		registry: p.registry,
		logger:   p.logger.With(logfields.RunID(runID), logfields.Prefix(in.Prefix)),
	}

	if err := p.runStages(ctx, st, plan(in.Options)); err != nil {
		return nil, err
	}
	return &Result{Assets: st.assets, HTML: st.html, RunID: runID}, nil
}

// runStages executes stages in order, recording timing and stopping on first error.
func (p *Pipeline) runStages(ctx context.Context, st *runState, stages []stageDef) error {
	base := st.logger
	defer func() { st.logger = base }()

	for _, sd := range stages {
		if !sd.enabled {
			p.recorder.IncStageResult(sd.name.String(), metrics.ResultSkipped)
			continue
		}

		select {
		case <-ctx.Done():
			p.recorder.IncStageResult(sd.name.String(), metrics.ResultCanceled)
			return errors.WrapError(ctx.Err(), errors.CategoryRuntime, "pipeline canceled").
				WithContext("stage", sd.name.String()).
				Build()
		default:
		}

		st.logger = base.With(logfields.Stage(sd.name.String()))

		t0 := time.Now()
		err := sd.fn(ctx, st)
		dur := time.Since(t0)

		p.recorder.ObserveStageDuration(sd.name.String(), dur)
		if err != nil {
			p.recorder.IncStageResult(sd.name.String(), metrics.ResultFailed)
			return err
		}
		p.recorder.IncStageResult(sd.name.String(), metrics.ResultSuccess)
		st.logger.Debug("Stage complete",
			logfields.Count(len(st.assets)),
			logfields.DurationMS(float64(dur.Microseconds())/1000))
	}
	return nil
}
