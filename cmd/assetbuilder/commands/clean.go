package commands

import "fmt"

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	Source string `short:"s" help:"Source directory (overrides config)" type:"path"`
}

func (c *CleanCmd) Run(g *Global, root *CLI) error {
	p, err := openProject(root, overrides{Source: c.Source})
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.service.Clean(p.cfg); err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.out(), "staged assets removed")
	return err
}
