package commands

import (
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/assetbuilder/internal/plugin"
	"git.home.luguber.info/inful/assetbuilder/internal/plugin/builtin"
)

// PluginsCmd implements the 'plugins' command.
type PluginsCmd struct{}

func (c *PluginsCmd) Run(g *Global, _ *CLI) error {
	reg := plugin.NewRegistry()
	if err := builtin.Register(reg); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KIND\tNAME\tTYPE\tPRIORITY\tDESCRIPTION")
	for _, kind := range []plugin.Kind{plugin.KindConverter, plugin.KindCompressor, plugin.KindTemplate} {
		for _, p := range reg.List(kind) {
			m := p.Metadata()
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", m.Kind, m.Name, m.FileType, m.Priority, m.Description)
		}
	}
	return tw.Flush()
}
