package commands

import (
	"git.home.luguber.info/inful/buildplan/internal/config"
)

// DataCmd implements the 'data' command.
type DataCmd struct {
	OutputFlags `embed:""`

	Root string `help:"Project root containing the input directory" default:"." type:"path"`
}

func (d *DataCmd) Run(g *Global, root *CLI) error {
	res, err := root.Load(g)
	if err != nil {
		return err
	}
	fragments, err := config.DataFragments(d.Root, res.Settings)
	if err != nil {
		return err
	}
	plan, err := root.loader(g).ResolveData(res.Settings, fragments)
	if err != nil {
		return err
	}
	return d.write(g, plan)
}
