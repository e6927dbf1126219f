package commands

import (
	"context"
	"fmt"
	"time"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/handoff"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
	"git.home.luguber.info/inful/buildplan/internal/retry"
)

// PublishCmd implements the 'publish' command.
type PublishCmd struct {
	StoreFlags `embed:""`

	URL      string        `name:"nats-url" help:"NATS server URL" default:"nats://127.0.0.1:4222" env:"NATS_URL"`
	Subject  string        `help:"Subject the plan is published on" default:"buildplan.plans"`
	KVBucket string        `name:"kv-bucket" help:"Also keep the latest plan in this JetStream key/value bucket"`
	Timeout  time.Duration `help:"Connection and flush timeout" default:"5s"`
	Record   bool          `help:"Record the plan in the plan history before publishing"`

	Retries int           `help:"Retries after a transient publish failure" default:"0"`
	Backoff string        `help:"Backoff between retries: fixed, linear or exponential" default:"exponential"`
	Delay   time.Duration `help:"Initial retry delay" default:"500ms"`
}

func (p *PublishCmd) Run(g *Global, root *CLI) error {
	mode, err := retry.ParseMode(p.Backoff)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid --backoff").Fatal().UserAction().Build()
	}
	policy := retry.NewPolicy(mode, p.Delay, 30*time.Second, p.Retries)

	res, err := root.Load(g)
	if err != nil {
		return err
	}
	if p.Record {
		if _, err := p.record(g, res.Plan); err != nil {
			return err
		}
	}

	err = policy.Do(g.Ctx, g.Logger, func(ctx context.Context) error {
		return p.publish(ctx, g, res.Plan)
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Out, "published %s on %s\n", shortFingerprint(res.Plan.Fingerprint()), p.Subject)
	return err
}

func (p *PublishCmd) publish(ctx context.Context, g *Global, plan resolver.BuildPlan) error {
	pub, err := handoff.NewNATSPublisher(ctx, handoff.NATSConfig{
		URL:      p.URL,
		Subject:  p.Subject,
		KVBucket: p.KVBucket,
		Timeout:  p.Timeout,
	}, g.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = pub.Close() }()
	return pub.Publish(ctx, plan)
}
