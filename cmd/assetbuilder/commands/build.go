package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/assetbuilder/internal/build"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source          string `short:"s" help:"Source directory (overrides config)" type:"path"`
	Dest            string `short:"d" help:"Destination directory (overrides config)" type:"path"`
	Publish         bool   `help:"Copy staged assets into the destination" default:"true" negatable:""`
	MarkupDir       string `name:"markup-dir" help:"Write each pipeline's HTML to <dir>/<prefix>.html instead of stdout" type:"path"`
	MetricsTextfile string `name:"metrics-textfile" help:"Write Prometheus metrics to this file after the build"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	p, err := openProject(root, overrides{Source: b.Source, Destination: b.Dest})
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := p.service.Run(ctx, build.BuildRequest{Config: p.cfg, Publish: b.Publish})
	if textfile := b.metricsTextfile(p); textfile != "" {
		if werr := metrics.WriteTextfile(textfile, p.promReg); werr != nil {
			p.logger.Warn("Failed to write metrics textfile", logfields.Path(textfile), logfields.Error(werr))
		}
	}
	if err != nil {
		return err
	}

	if b.MarkupDir != "" {
		return writeMarkupFiles(b.MarkupDir, res)
	}
	return printMarkup(g.out(), res)
}

func (b *BuildCmd) metricsTextfile(p *project) string {
	if b.MetricsTextfile != "" {
		return b.MetricsTextfile
	}
	return p.cfg.Metrics.Textfile
}

func printMarkup(w io.Writer, res *build.BuildResult) error {
	for _, pr := range res.Pipelines {
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", pr.Tag, pr.Prefix, pr.HTML); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkupFiles(dir string, res *build.BuildResult) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.WrapError(err, errors.CategorySave, "failed to create markup directory").
			WithContext("path", dir).
			Build()
	}
	for _, pr := range res.Pipelines {
		path := filepath.Join(dir, pr.Prefix+".html")
		if err := os.WriteFile(path, []byte(pr.HTML+"\n"), 0o600); err != nil {
			return errors.WrapError(err, errors.CategorySave, "failed to write markup").
				WithContext("path", path).
				Build()
		}
	}
	return nil
}
