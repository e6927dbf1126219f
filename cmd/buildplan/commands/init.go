package commands

import (
	"fmt"

	"git.home.luguber.info/inful/buildplan/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool   `help:"Overwrite existing configuration file"`
	Path  string `arg:"" optional:"" help:"Configuration file to write" default:"buildplan.yaml" type:"path"`
}

func (i *InitCmd) Run(g *Global, _ *CLI) error {
	_, _ = fmt.Fprintf(g.Out, "Writing configuration to %s\n", i.Path)
	if err := config.Init(i.Path, i.Force); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Out, "initialized successfully")
	return nil
}
