package commands

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	OutputFlags `embed:""`
	StoreFlags  `embed:""`

	Record bool `help:"Record the plan in the plan history"`
}

func (r *ResolveCmd) Run(g *Global, root *CLI) error {
	res, err := root.Load(g)
	if err != nil {
		return err
	}
	if r.Record {
		if _, err := r.record(g, res.Plan); err != nil {
			return err
		}
	}
	return r.write(g, res.Plan)
}
