package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/handoff"
	"git.home.luguber.info/inful/buildplan/internal/planstore"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	StoreFlags `embed:""`

	Limit  int    `short:"n" help:"Number of plans to list (0 lists all)" default:"20"`
	Show   string `help:"Print the document of the plan with this ID"`
	Format string `short:"f" help:"Document format for --show (json or yaml)" default:"json"`
}

func (h *HistoryCmd) Run(g *Global, _ *CLI) error {
	store, err := planstore.Open(h.Store)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if h.Show != "" {
		return h.show(g, store)
	}

	records, err := store.History(g.Ctx, h.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(g.Out, "no recorded plans")
		return err
	}

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tRECORDED\tPOLICY\tFINGERPRINT\tCHANGED")
	for _, rec := range records {
		changed := "no"
		if rec.Superseded || rec.Previous == "" {
			changed = "yes"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.CreatedAt.Format(time.RFC3339), rec.Policy, shortFingerprint(rec.Fingerprint), changed)
	}
	return tw.Flush()
}

func (h *HistoryCmd) show(g *Global, store *planstore.Store) error {
	format, err := handoff.ParseFormat(h.Format)
	if err != nil {
		return err
	}
	rec, err := store.Get(g.Ctx, h.Show)
	if errors.Is(err, planstore.ErrNotFound) {
		return ferrors.ValidationError("unknown plan ID").WithContext("id", h.Show).Build()
	}
	if err != nil {
		return err
	}
	return rec.Document.Encode(g.Out, format)
}
