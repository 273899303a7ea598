package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/build"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Source       string        `short:"s" help:"Source directory (overrides config)" type:"path"`
	Dest         string        `short:"d" help:"Destination directory (overrides config)" type:"path"`
	PollInterval time.Duration `name:"poll-interval" help:"Also rebuild on this interval (0 disables)"`
	MetricsAddr  string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return w.run(ctx, root)
}

func (w *WatchCmd) run(ctx context.Context, root *CLI) error {
	ov := overrides{Source: w.Source, Destination: w.Dest}
	p, err := openProject(root, ov)
	if err != nil {
		return err
	}
	defer p.Close()

	addr := w.MetricsAddr
	if addr == "" {
		addr = p.cfg.Metrics.Addr
	}
	if addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr, p.promReg); err != nil {
				p.logger.Error("Metrics server failed", slog.String("addr", addr), logfields.Error(err))
			}
		}()
	}

	poll := w.PollInterval
	if poll == 0 {
		poll = p.cfg.Watch.PollDuration()
	}

	rebuild := func(ctx context.Context, reason string) error {
		// Configuration edits take effect on the next build; the runner and
		// its cache live for the whole session.
		cfg, err := loadConfig(root, ov)
		if err != nil {
			p.logger.Warn("Keeping previous configuration", logfields.Error(err))
			cfg = p.cfg
		} else {
			p.cfg = cfg
		}
		res, err := p.service.Run(ctx, build.BuildRequest{Config: cfg, Publish: true})
		if err != nil {
			return err
		}
		p.logger.Info("Assets rebuilt",
			slog.String("reason", reason),
			logfields.Count(len(res.Pipelines)),
			slog.Int("cached", res.CachedCount()))
		return nil
	}

	watcher, err := watch.New(watch.Config{
		Root:         p.cfg.Source,
		Ignore:       ignoredPaths(p.cfg),
		Debounce:     p.cfg.Watch.DebounceDuration(),
		PollInterval: poll,
	}, rebuild, p.logger)
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}

// ignoredPaths lists generated outputs whose changes must not trigger a rebuild.
func ignoredPaths(cfg *config.Config) []string {
	db := historyPath(cfg)
	paths := []string{cfg.Destination, db, db + "-journal", db + "-wal", db + "-shm"}
	seen := map[string]bool{}
	for _, pc := range cfg.Pipelines {
		staging := filepath.Join(cfg.Source, cfg.OptionsFor(pc).StagingPath)
		if !seen[staging] {
			seen[staging] = true
			paths = append(paths, staging)
		}
	}
	for i, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			paths[i] = abs
		}
	}
	return paths
}
