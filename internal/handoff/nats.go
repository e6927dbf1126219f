package handoff

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/logfields"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// Header names set on published messages.
const (
	HeaderFingerprint = "Buildplan-Fingerprint"
	HeaderPolicy      = "Buildplan-Policy"
)

// LatestKey is the key under which the last published plan is kept when a KV
// bucket is configured.
const LatestKey = "latest"

// NATSConfig configures NATSPublisher.
type NATSConfig struct {
	URL     string
	Subject string
	// KVBucket, when set, also stores each document in a JetStream key/value
	// bucket under LatestKey.
	KVBucket string
	Timeout  time.Duration
}

// NATSPublisher publishes plan documents as JSON messages.
type NATSPublisher struct {
	conn    *nats.Conn
	kv      jetstream.KeyValue
	subject string
	timeout time.Duration
	logger  *slog.Logger
}

// NewNATSPublisher connects to cfg.URL. The caller must Close the publisher.
func NewNATSPublisher(ctx context.Context, cfg NATSConfig, logger *slog.Logger) (*NATSPublisher, error) {
	if cfg.Subject == "" {
		return nil, ferrors.ConfigError("NATS subject is required").Build()
	}
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("buildplan"),
		nats.Timeout(cfg.Timeout),
		nats.NoReconnect())
	if err != nil {
		return nil, ferrors.PublishError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", cfg.URL).
			Build()
	}

	p := &NATSPublisher{conn: conn, subject: cfg.Subject, timeout: cfg.Timeout, logger: logger}
	if cfg.KVBucket != "" {
		js, err := jetstream.New(conn)
		if err != nil {
			conn.Close()
			return nil, ferrors.PublishError("failed to create JetStream context").WithCause(err).Build()
		}
		kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      cfg.KVBucket,
			Description: "Resolved build plans",
			History:     10,
		})
		if err != nil {
			conn.Close()
			return nil, ferrors.PublishError("failed to open KV bucket").
				WithCause(err).
				WithContext("bucket", cfg.KVBucket).
				Build()
		}
		p.kv = kv
	}

	logger.Debug("NATS publisher connected",
		slog.String("url", cfg.URL),
		slog.String("subject", cfg.Subject),
		slog.String("kv_bucket", cfg.KVBucket))
	return p, nil
}

// Publish sends the JSON document and waits for the server to acknowledge the
// flush.
func (p *NATSPublisher) Publish(ctx context.Context, plan resolver.BuildPlan) error {
	if plan.IsZero() {
		return ferrors.InternalError("cannot publish an unresolved plan").Build()
	}
	msg, err := planMessage(p.subject, plan)
	if err != nil {
		return err
	}
	if err := p.conn.PublishMsg(msg); err != nil {
		return p.publishError(err)
	}
	// FlushWithContext requires a deadline.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return p.publishError(err)
	}

	if p.kv != nil {
		if _, err := p.kv.Put(ctx, LatestKey, msg.Data); err != nil {
			return p.publishError(err)
		}
	}

	p.logger.Info("Published build plan",
		slog.String("subject", p.subject),
		logfields.Fingerprint(plan.Fingerprint()))
	return nil
}

// planMessage wraps the JSON document of plan in a message for subject,
// carrying the fingerprint and policy as headers.
func planMessage(subject string, plan resolver.BuildPlan) (*nats.Msg, error) {
	doc := NewDocument(plan)
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal plan document").Build()
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(HeaderFingerprint, doc.Fingerprint)
	msg.Header.Set(HeaderPolicy, doc.Policy)
	return msg, nil
}

func (p *NATSPublisher) publishError(err error) error {
	return ferrors.PublishError("failed to publish build plan").
		WithCause(err).
		WithContext("subject", p.subject).
		Build()
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
