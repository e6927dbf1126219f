package fragment

import (
	"os"

	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// CoerceFunc converts a raw string value found at path into a typed value.
type CoerceFunc func(path []string, raw string) (any, error)

// Option customizes a loader.
type Option func(*options)

type options struct {
	source string
	kind   resolver.Kind
	lookup func(string) (string, bool)
	coerce CoerceFunc
}

func newOptions(defaultSource string, kind resolver.Kind, opts []Option) *options {
	o := &options{source: defaultSource, kind: kind, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithSource overrides the source identifier recorded in provenance.
func WithSource(source string) Option {
	return func(o *options) { o.source = source }
}

// WithKind overrides the fragment kind.
func WithKind(kind resolver.Kind) Option {
	return func(o *options) { o.kind = kind }
}

// WithLookup sets the variable lookup used to expand ${VAR} references in files.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(o *options) { o.lookup = lookup }
}

// WithCoerce sets the conversion applied to string values from the environment,
// .env files and key=value pairs.
func WithCoerce(fn CoerceFunc) Option {
	return func(o *options) { o.coerce = fn }
}

func (o *options) value(path []string, raw string) (any, error) {
	if o.coerce == nil {
		return raw, nil
	}
	return o.coerce(path, raw)
}
