package commands

import (
	"fmt"

	"git.home.luguber.info/inful/buildplan/internal/logfields"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	Require []string `short:"r" help:"Additional keys that must be present (dotted paths allowed)"`
}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	res, err := root.Load(g, v.Require...)
	if err != nil {
		return err
	}
	g.Logger.Debug("Configuration valid", logfields.Fingerprint(res.Plan.Fingerprint()))
	_, err = fmt.Fprintf(g.Out, "configuration valid: %d keys from %d fragments (fingerprint %s)\n",
		res.Plan.Len(), len(res.Fragments), shortFingerprint(res.Plan.Fingerprint()))
	return err
}

func shortFingerprint(f string) string {
	if len(f) > 12 {
		return f[:12]
	}
	return f
}
