package commands

import (
	"log/slog"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/assetbuilder/internal/build"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/history"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
	"git.home.luguber.info/inful/assetbuilder/internal/plugin"
	"git.home.luguber.info/inful/assetbuilder/internal/plugin/builtin"
)

// project bundles everything a command needs to build a configured site.
type project struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *plugin.Registry
	promReg  *prom.Registry
	history  *history.SQLiteStore
	service  *build.DefaultBuildService
}

// overrides are command line values layered over the configuration file.
type overrides struct {
	Source      string
	Destination string
}

func loadConfig(root *CLI, ov overrides) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if ov.Source != "" {
		cfg.Source = ov.Source
	}
	if ov.Destination != "" {
		cfg.Destination = ov.Destination
	}
	return cfg, nil
}

func openProject(root *CLI, ov overrides) (*project, error) {
	cfg, err := loadConfig(root, ov)
	if err != nil {
		return nil, err
	}
	logger := root.applyLogging(cfg)

	reg := plugin.NewRegistry()
	if err := builtin.Register(reg); err != nil {
		return nil, err
	}

	p := &project{cfg: cfg, logger: logger, registry: reg, promReg: prom.NewRegistry()}

	var runnerOpts []pipeline.RunnerOption
	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(historyPath(cfg))
		if err != nil {
			return nil, err
		}
		p.history = store
		runnerOpts = append(runnerOpts, pipeline.WithHistory(store))
	}

	pl := pipeline.New(reg,
		pipeline.WithLogger(logger),
		pipeline.WithRecorder(metrics.NewPrometheusRecorder(p.promReg)))
	runner := pipeline.NewRunner(pl, pipeline.NewCache(), runnerOpts...)
	p.service = build.NewBuildService(runner).WithLogger(logger)

	logger.Debug("Project loaded",
		logfields.Path(cfg.Source),
		slog.String("destination", cfg.Destination),
		logfields.Count(len(cfg.Pipelines)),
		slog.Int("plugins", reg.Count()))
	return p, nil
}

func (p *project) Close() {
	if p.history == nil {
		return
	}
	if err := p.history.Close(); err != nil {
		p.logger.Warn("Failed to close history store", logfields.Error(err))
	}
}

// historyPath resolves the configured history database relative to the source.
func historyPath(cfg *config.Config) string {
	if filepath.IsAbs(cfg.History.Path) || cfg.History.Path == ":memory:" {
		return cfg.History.Path
	}
	return filepath.Join(cfg.Source, cfg.History.Path)
}
