package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/asset"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

// BuildService is the canonical interface for building a project's assets.
type BuildService interface {
	// Run processes every configured pipeline in configuration order and stops
	// at the first failing one.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)

	// Clean removes staged assets and forgets cached outcomes.
	Clean(cfg *config.Config) error
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// Config is the loaded project configuration.
	Config *config.Config

	// Publish copies staged assets to the destination after each pipeline.
	Publish bool
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// Status indicates overall build outcome.
	Status BuildStatus

	// Pipelines holds one entry per pipeline that ran, in configuration order.
	Pipelines []PipelineResult

	// Duration is the total build execution time.
	Duration time.Duration

	// StartTime is when the build started.
	StartTime time.Time

	// EndTime is when the build completed.
	EndTime time.Time
}

// PipelineResult is the outcome of one configured pipeline.
type PipelineResult struct {
	Tag    string
	Prefix string
	Cached bool
	HTML   string
	Assets []asset.Asset
	Err    error
}

// CachedCount reports how many pipelines were served from the cache.
func (r *BuildResult) CachedCount() int {
	n := 0
	for _, p := range r.Pipelines {
		if p.Cached {
			n++
		}
	}
	return n
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates every pipeline completed.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed indicates a pipeline failed.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
