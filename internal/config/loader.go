package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/fragment"
	"git.home.luguber.info/inful/buildplan/internal/logfields"
	"git.home.luguber.info/inful/buildplan/internal/metrics"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// DefaultEnvFiles are read, when present, if LoadOptions.EnvFiles is nil.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadOptions selects the sources of one resolution.
type LoadOptions struct {
	// Files are configuration files in ascending priority.
	Files []string
	// EnvFiles are .env files; nil means DefaultEnvFiles, skipping missing ones.
	// Explicitly listed files must exist.
	EnvFiles []string
	// Environ is the environment in os.Environ format; nil means os.Environ().
	Environ []string
	// Overrides are key=value pairs with the highest priority.
	Overrides []string
	// Policy merges the configuration layers; empty means resolver.DefaultPolicy.
	Policy resolver.MergePolicy
	// Required keys; nil means RequiredKeys.
	Required []string
}

// Result is a validated plan together with its typed view.
type Result struct {
	Plan      resolver.BuildPlan
	Settings  Settings
	Fragments []resolver.Fragment
}

// Loader resolves configuration layers with logging and metrics.
type Loader struct {
	recorder metrics.Recorder
	logger   *slog.Logger
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) LoaderOption {
	return func(l *Loader) {
		if r != nil {
			l.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader with a no-op recorder and the default logger.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{recorder: metrics.NoopRecorder{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fragments collects every configuration layer described by opts.
func (l *Loader) Fragments(opts LoadOptions) ([]resolver.Fragment, error) {
	fragments := []resolver.Fragment{DefaultsFragment()}

	for i, path := range opts.Files {
		f, err := fragment.FromFile(path, PriorityFile+i)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, f)
	}

	envFiles, optional := opts.EnvFiles, false
	if envFiles == nil {
		envFiles, optional = DefaultEnvFiles, true
	}
	for _, path := range envFiles {
		if optional {
			if _, err := os.Stat(path); err != nil {
				continue
			}
		}
		f, err := fragment.FromEnvFile(path, EnvPrefix, PriorityEnvFile, fragment.WithCoerce(Coerce))
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, f)
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	env, err := fragment.FromEnv(EnvPrefix, PriorityEnv, environ, fragment.WithCoerce(Coerce))
	if err != nil {
		return nil, err
	}
	if env.Len() > 0 {
		fragments = append(fragments, env)
	}

	if len(opts.Overrides) > 0 {
		f, err := fragment.FromPairs("overrides", PriorityOverride, opts.Overrides, fragment.WithCoerce(Coerce))
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, f)
	}

	for _, f := range fragments {
		l.logger.Debug("Configuration fragment loaded",
			logfields.Source(f.Source()),
			logfields.Kind(string(f.Kind())),
			logfields.Priority(f.Priority()),
			slog.Int("keys", f.Len()))
	}
	return fragments, nil
}

// Load resolves, validates and decodes the configuration described by opts.
func (l *Loader) Load(opts LoadOptions) (*Result, error) {
	fragments, err := l.Fragments(opts)
	if err != nil {
		return nil, err
	}
	policy := opts.Policy
	if policy == "" {
		policy = resolver.DefaultPolicy
	}
	plan, err := l.Resolve(fragments, policy)
	if err != nil {
		return nil, err
	}
	required := opts.Required
	if required == nil {
		required = RequiredKeys
	}
	if err := l.Validate(plan, required); err != nil {
		return nil, err
	}
	settings, err := Decode(plan)
	if err != nil {
		return nil, err
	}
	l.logger.Info("Build plan resolved",
		logfields.Policy(string(policy)),
		logfields.Fragments(len(fragments)),
		logfields.Fingerprint(plan.Fingerprint()),
		slog.String("input", settings.InputDirectory),
		slog.String("output", settings.OutputDirectory))
	return &Result{Plan: plan, Settings: settings, Fragments: fragments}, nil
}

// Resolve runs resolver.Resolve, recording metrics and classifying failures.
func (l *Loader) Resolve(fragments []resolver.Fragment, policy resolver.MergePolicy) (resolver.BuildPlan, error) {
	start := time.Now()
	plan, err := resolver.Resolve(fragments, policy)
	elapsed := time.Since(start)

	l.recorder.ObserveResolveDuration(string(policy), elapsed)
	l.recorder.ObserveFragments(len(fragments))

	if err == nil {
		l.recorder.IncResolveOutcome(string(policy), metrics.OutcomeSuccess)
		l.logger.Debug("Fragments resolved",
			logfields.Policy(string(policy)),
			logfields.Fragments(len(fragments)),
			logfields.DurationMS(float64(elapsed.Microseconds())/1000))
		return plan, nil
	}

	var conflict *resolver.ConflictError
	var structure *resolver.StructureError
	switch {
	case errors.As(err, &conflict):
		l.recorder.IncResolveOutcome(string(policy), metrics.OutcomeConflict)
		l.recorder.IncConflict(conflict.Key)
		return resolver.BuildPlan{}, ferrors.ConflictError("conflicting configuration").
			WithCause(err).
			WithContext("key", conflict.Key).
			WithContext("sources", conflict.First+", "+conflict.Second).
			Build()
	case errors.As(err, &structure):
		l.recorder.IncResolveOutcome(string(policy), metrics.OutcomeStructure)
		return resolver.BuildPlan{}, ferrors.WrapError(err, ferrors.CategoryStructure, "malformed configuration").
			Fatal().UserAction().
			WithContext("source", structure.Source).
			Build()
	case errors.Is(err, resolver.ErrUnknownPolicy):
		l.recorder.IncResolveOutcome(string(policy), metrics.OutcomeError)
		return resolver.BuildPlan{}, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid merge policy").
			Fatal().UserAction().
			Build()
	default:
		l.recorder.IncResolveOutcome(string(policy), metrics.OutcomeError)
		return resolver.BuildPlan{}, ferrors.WrapError(err, ferrors.CategoryInternal, "resolution failed").
			Fatal().
			Build()
	}
}

// Validate runs resolver.Validate, recording metrics and classifying failures.
func (l *Loader) Validate(plan resolver.BuildPlan, required []string) error {
	err := resolver.Validate(plan, required)
	if err == nil {
		return nil
	}
	var validation *resolver.ValidationError
	if errors.As(err, &validation) {
		l.recorder.IncResolveOutcome(string(plan.Policy()), metrics.OutcomeInvalid)
		l.recorder.AddMissingKeys(len(validation.Missing))
	}
	return ferrors.WrapError(err, ferrors.CategoryValidation, "incomplete configuration").
		Fatal().UserAction().
		Build()
}
