package build

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/manifest"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	runner *pipeline.Runner
	logger *slog.Logger
}

// NewBuildService creates a build service around a runner.
func NewBuildService(runner *pipeline.Runner) *DefaultBuildService {
	return &DefaultBuildService{runner: runner, logger: slog.Default()}
}

// WithLogger sets the logger.
func (s *DefaultBuildService) WithLogger(l *slog.Logger) *DefaultBuildService {
	if l != nil {
		s.logger = l
	}
	return s
}

// Run executes every configured pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	result := &BuildResult{StartTime: time.Now()}
	finish := func(status BuildStatus) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
	}

	if req.Config == nil {
		finish(BuildStatusFailed)
		return result, errors.ConfigError("config required").Build()
	}
	cfg := req.Config

	for _, pc := range cfg.Pipelines {
		select {
		case <-ctx.Done():
			finish(BuildStatusCancelled)
			return result, ctx.Err()
		default:
		}

		pr, err := s.runPipeline(ctx, cfg, pc, req.Publish)
		result.Pipelines = append(result.Pipelines, pr)
		if err != nil {
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
				finish(BuildStatusCancelled)
			} else {
				finish(BuildStatusFailed)
			}
			return result, err
		}
	}

	finish(BuildStatusSuccess)
	s.logger.Info("Build complete",
		logfields.Count(len(result.Pipelines)),
		slog.Int("cached", result.CachedCount()),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))
	return result, nil
}

func (s *DefaultBuildService) runPipeline(ctx context.Context, cfg *config.Config, pc config.PipelineConfig, publish bool) (PipelineResult, error) {
	pr := PipelineResult{Tag: pc.Tag, Prefix: pc.Prefix}

	m, err := resolveManifest(cfg.Source, pc)
	if err != nil {
		pr.Err = err
		return pr, err
	}

	opts := cfg.OptionsFor(pc)
	res, cached, err := s.runner.Run(ctx, pipeline.Request{
		Tag: pc.Tag,
		Input: pipeline.Input{
			Manifest:    m,
			Prefix:      pc.Prefix,
			Source:      cfg.Source,
			Destination: cfg.Destination,
			Type:        pc.Type,
			Options:     opts,
		},
	})
	pr.Cached = cached
	if err != nil {
		pr.Err = err
		return pr, err
	}
	pr.HTML = res.HTML
	pr.Assets = res.Assets

	if publish {
		if err := pipeline.Publish(cfg.Source, cfg.Destination, opts, res.Assets); err != nil {
			pr.Err = err
			return pr, err
		}
	}
	return pr, nil
}

// Clean removes the staging directory of every pipeline and clears the cache.
func (s *DefaultBuildService) Clean(cfg *config.Config) error {
	s.runner.ClearCache()

	seen := map[string]bool{}
	for _, pc := range cfg.Pipelines {
		opts := cfg.OptionsFor(pc)
		if seen[opts.StagingPath] {
			continue
		}
		seen[opts.StagingPath] = true
		if err := pipeline.RemoveStagedAssets(cfg.Source, opts); err != nil {
			s.logger.Error("Failed to remove staged assets", logfields.Path(opts.StagingPath), logfields.Error(err))
			return err
		}
		s.logger.Info("Removed staged assets", logfields.Path(filepath.Join(cfg.Source, opts.StagingPath)))
	}
	return nil
}

func resolveManifest(source string, pc config.PipelineConfig) (manifest.Manifest, error) {
	if pc.ManifestFile != "" {
		return manifest.Load(filepath.Join(source, pc.ManifestFile))
	}
	return manifest.Manifest(pc.Manifest), nil
}
