// Package watch rebuilds a project when its source tree changes.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
)

// BuildFunc performs one build. reason describes what triggered it.
type BuildFunc func(ctx context.Context, reason string) error

// Config controls a Watcher.
type Config struct {
	// Root is the directory watched recursively.
	Root string
	// Ignore lists paths whose events never trigger a build (staging and
	// destination directories, typically).
	Ignore []string
	// Debounce collapses bursts of events into a single build.
	Debounce time.Duration
	// PollInterval, when positive, schedules periodic builds in addition to
	// file system events.
	PollInterval time.Duration
}

// Watcher monitors a source tree and triggers debounced, serialized builds.
type Watcher struct {
	cfg       Config
	build     BuildFunc
	logger    *slog.Logger
	watcher   *fsnotify.Watcher
	scheduler gocron.Scheduler

	triggerChan chan string
	buildMu     sync.Mutex
	ignore      []string
}

// New creates a watcher. Call Run to start it.
func New(cfg Config, build BuildFunc, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to resolve watch root").
			WithContext("path", cfg.Root).
			Build()
	}
	cfg.Root = root

	ignore := make([]string, 0, len(cfg.Ignore))
	for _, p := range cfg.Ignore {
		if p == "" {
			continue
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		ignore = append(ignore, filepath.Clean(p))
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}

	return &Watcher{
		cfg:         cfg,
		build:       build,
		logger:      logger,
		watcher:     fw,
		triggerChan: make(chan string, 1),
		ignore:      ignore,
	}, nil
}

// Run builds once, then watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	if err := w.addTree(w.cfg.Root); err != nil {
		return err
	}

	if w.cfg.PollInterval > 0 {
		if err := w.startScheduler(ctx); err != nil {
			return err
		}
		defer func() {
			if err := w.scheduler.Shutdown(); err != nil {
				w.logger.Error("Error stopping scheduler", logfields.Error(err))
			}
		}()
	}

	w.logger.Info("Watching for changes",
		logfields.Path(w.cfg.Root),
		slog.Duration("debounce", w.cfg.Debounce),
		slog.Duration("poll_interval", w.cfg.PollInterval))

	w.runBuild(ctx, "initial")

	go w.watchLoop(ctx)
	w.buildLoop(ctx)

	// Wait for a build already in flight; later ones see ctx done and return.
	w.buildMu.Lock()
	defer w.buildMu.Unlock()
	return nil
}

func (w *Watcher) startScheduler(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to create scheduler").Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.cfg.PollInterval),
		gocron.NewTask(func() { w.runBuild(ctx, "poll") }),
		gocron.WithName("poll-build"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return errors.WrapError(err, errors.CategoryRuntime, "failed to schedule poll build").
			WithContext("interval", w.cfg.PollInterval.String()).
			Build()
	}
	w.scheduler = s
	s.Start()
	return nil
}

// watchLoop forwards relevant file system events to the build loop.
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) || event.Op == fsnotify.Chmod || hidden(event.Name) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						w.logger.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			w.logger.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			w.trigger(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

// buildLoop debounces triggers and runs builds until ctx is done.
func (w *Watcher) buildLoop(ctx context.Context) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-w.triggerChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.cfg.Debounce, func() {
				w.runBuild(ctx, reason)
			})
		}
	}
}

func (w *Watcher) trigger(reason string) {
	select {
	case w.triggerChan <- reason:
	default:
		// already pending
	}
}

// runBuild serializes builds so the watcher never runs two at once.
func (w *Watcher) runBuild(ctx context.Context, reason string) {
	w.buildMu.Lock()
	defer w.buildMu.Unlock()

	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := w.build(ctx, reason); err != nil {
		w.logger.Error("Build failed", slog.String("reason", reason), logfields.Error(err))
		return
	}
	w.logger.Info("Build finished",
		slog.String("reason", reason),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.cfg.Root && (w.ignored(path) || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.WrapError(err, errors.CategoryRuntime, "failed to watch directory").
				WithContext("path", path).
				Build()
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	path = filepath.Clean(path)
	for _, p := range w.ignore {
		if path == p || strings.HasPrefix(path, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// hidden reports dotfiles such as editor swap files and the history database.
func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
