package commands

import (
	"log/slog"
	"os"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/handoff"
	"git.home.luguber.info/inful/buildplan/internal/logfields"
	"git.home.luguber.info/inful/buildplan/internal/planstore"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// OutputFlags select how a plan document is written.
type OutputFlags struct {
	Format string `short:"f" help:"Output format (json or yaml)" default:"json"`
	Output string `short:"o" help:"Write to this file instead of stdout" type:"path"`
}

// StoreFlags locate the plan history database.
type StoreFlags struct {
	Store string `help:"Plan history database (SQLite)" default:".buildplan.db" type:"path"`
}

func (o OutputFlags) write(g *Global, plan resolver.BuildPlan) error {
	format, err := handoff.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	if o.Output == "" {
		return handoff.NewWriterPublisher(g.Out, format).Publish(g.Ctx, plan)
	}

	f, err := os.Create(o.Output)
	if err != nil {
		return ferrors.FileSystemError("failed to create output file").
			WithCause(err).
			WithContext("path", o.Output).
			Build()
	}
	if err := handoff.NewWriterPublisher(f, format).Publish(g.Ctx, plan); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return ferrors.FileSystemError("failed to close output file").
			WithCause(err).
			WithContext("path", o.Output).
			Build()
	}
	g.Logger.Info("Build plan written", logfields.Path(o.Output), logfields.Fingerprint(plan.Fingerprint()))
	return nil
}

func (s StoreFlags) record(g *Global, plan resolver.BuildPlan) (planstore.Record, error) {
	store, err := planstore.Open(s.Store)
	if err != nil {
		return planstore.Record{}, err
	}
	defer func() { _ = store.Close() }()

	rec, err := store.Record(g.Ctx, plan)
	if err != nil {
		return planstore.Record{}, err
	}
	g.Logger.Info("Build plan recorded",
		logfields.PlanID(rec.ID),
		logfields.Fingerprint(rec.Fingerprint),
		logfields.Path(s.Store),
		slog.Bool("superseded", rec.Superseded))
	return rec, nil
}
