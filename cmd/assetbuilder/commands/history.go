package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Source string `short:"s" help:"Source directory (overrides config)" type:"path"`
	Limit  int    `short:"n" help:"Number of runs to show" default:"20"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root, overrides{Source: h.Source})
	if err != nil {
		return err
	}
	root.applyLogging(cfg)
	if !cfg.History.Enabled {
		return errors.ConfigError("run history is disabled").
			WithContext("setting", "history.enabled").
			Build()
	}

	store, err := history.NewSQLiteStore(historyPath(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tTAG\tPREFIX\tOUTCOME\tCACHED\tDURATION\tASSETS\tERROR")
	for _, r := range runs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\t%d\t%s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Tag, r.Prefix, r.Outcome,
			r.Cached, r.Duration.Round(time.Millisecond), len(r.Assets), r.Error)
	}
	return tw.Flush()
}
