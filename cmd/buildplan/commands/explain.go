package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
)

// ExplainCmd implements the 'explain' command.
type ExplainCmd struct {
	Path string `arg:"" optional:"" help:"Key or dotted path to explain (default: every top-level key)"`
}

func (e *ExplainCmd) Run(g *Global, root *CLI) error {
	res, err := root.Load(g)
	if err != nil {
		return err
	}
	plan := res.Plan

	paths := plan.Keys()
	if e.Path != "" {
		if _, ok := plan.Lookup(e.Path); !ok {
			return ferrors.ValidationError("key not present in build plan").
				WithContext("key", e.Path).
				Build()
		}
		paths = []string{e.Path}
	}

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KEY\tVALUE\tSOURCES")
	for _, p := range paths {
		v, _ := plan.Lookup(p)
		encoded, err := json.Marshal(v)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode value").
				WithContext("key", p).
				Build()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", p, encoded, strings.Join(plan.Explain(p), ", "))
	}
	return tw.Flush()
}
