package handoff

import (
	"context"
	"io"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// Publisher hands a resolved plan to the build executor.
type Publisher interface {
	Publish(ctx context.Context, plan resolver.BuildPlan) error
}

// WriterPublisher encodes plans onto an io.Writer.
type WriterPublisher struct {
	w      io.Writer
	format Format
}

// NewWriterPublisher creates a publisher writing format documents to w.
func NewWriterPublisher(w io.Writer, format Format) *WriterPublisher {
	return &WriterPublisher{w: w, format: format}
}

// Publish writes the plan document.
func (p *WriterPublisher) Publish(ctx context.Context, plan resolver.BuildPlan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if plan.IsZero() {
		return ferrors.InternalError("cannot publish an unresolved plan").Build()
	}
	if err := NewDocument(plan).Encode(p.w, p.format); err != nil {
		return ferrors.PublishError("failed to write plan document").
			WithCause(err).
			WithRetry(ferrors.RetryNever).
			WithContext("format", string(p.format)).
			Build()
	}
	return nil
}
