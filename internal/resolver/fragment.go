package resolver

// Kind labels where a fragment came from. It is informational only; merge
// order is decided by priority alone.
type Kind string

const (
	KindDefaults Kind = "defaults"
	KindFile     Kind = "file"
	KindEnv      Kind = "env"
	KindOverride Kind = "override"
	KindData     Kind = "data"
)

// Fragment is one named, prioritized source of configuration values.
// It is immutable: NewFragment copies its input and accessors return copies.
type Fragment struct {
	source   string
	priority int
	kind     Kind
	values   map[string]any
}

// FragmentOption customizes NewFragment.
type FragmentOption func(*Fragment)

// WithKind records the origin kind of the fragment.
func WithKind(k Kind) FragmentOption {
	return func(f *Fragment) { f.kind = k }
}

// NewFragment validates and copies values into a Fragment. Keys are trimmed and
// NFC-normalized at every nesting level and must be non-empty; values are
// converted to the canonical plan types. A nil map yields an empty fragment.
func NewFragment(source string, priority int, values map[string]any, opts ...FragmentOption) (Fragment, error) {
	if source == "" {
		return Fragment{}, ErrEmptySource
	}
	canonical, err := canonicalizeMap(source, values)
	if err != nil {
		return Fragment{}, err
	}
	f := Fragment{source: source, priority: priority, values: canonical}
	for _, opt := range opts {
		opt(&f)
	}
	return f, nil
}

// MustFragment is NewFragment for static values; it panics on error.
func MustFragment(source string, priority int, values map[string]any, opts ...FragmentOption) Fragment {
	f, err := NewFragment(source, priority, values, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Fragment) Source() string { return f.source }
func (f Fragment) Priority() int  { return f.priority }
func (f Fragment) Kind() Kind     { return f.kind }
func (f Fragment) Len() int       { return len(f.values) }

// Keys returns the top-level keys in sorted order.
func (f Fragment) Keys() []string { return sortedKeys(f.values) }

// Value returns a copy of the value stored under key.
func (f Fragment) Value(key string) (any, bool) {
	v, ok := f.values[key]
	if !ok {
		return nil, false
	}
	return deepCopy(v), true
}

// Values returns a copy of all values.
func (f Fragment) Values() map[string]any {
	if f.values == nil {
		return map[string]any{}
	}
	return copyMap(f.values)
}

func (f Fragment) valid() bool { return f.source != "" && f.values != nil }
