package metrics

import "time"

// OutcomeLabel enumerates resolution outcome categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess   OutcomeLabel = "success"
	OutcomeConflict  OutcomeLabel = "conflict"
	OutcomeInvalid   OutcomeLabel = "invalid"
	OutcomeStructure OutcomeLabel = "structure"
	OutcomeError     OutcomeLabel = "error"
)

// Recorder defines observability hooks for configuration resolution.
type Recorder interface {
	ObserveResolveDuration(policy string, d time.Duration)
	IncResolveOutcome(policy string, outcome OutcomeLabel)
	ObserveFragments(n int)
	IncConflict(key string)
	AddMissingKeys(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveResolveDuration(string, time.Duration) {}
func (NoopRecorder) IncResolveOutcome(string, OutcomeLabel)       {}
func (NoopRecorder) ObserveFragments(int)                         {}
func (NoopRecorder) IncConflict(string)                           {}
func (NoopRecorder) AddMissingKeys(int)                           {}
