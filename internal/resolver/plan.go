package resolver

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// BuildPlan is the resolved configuration handed to a build executor.
// It is a value type with no exported state; every accessor returns a copy,
// so a plan cannot be changed once Resolve returns it.
type BuildPlan struct {
	policy      MergePolicy
	values      map[string]any
	provenance  map[string][]string
	leaves      []leaf
	order       map[string]int
	fingerprint string
}

// IsZero reports whether p is the zero plan (never produced by Resolve).
func (p BuildPlan) IsZero() bool { return p.values == nil }

// Policy returns the merge policy the plan was resolved with.
func (p BuildPlan) Policy() MergePolicy { return p.policy }

// Keys returns the top-level keys, sorted.
func (p BuildPlan) Keys() []string { return sortedKeys(p.values) }

// Len returns the number of top-level keys.
func (p BuildPlan) Len() int { return len(p.values) }

// Has reports whether key is present at the top level.
func (p BuildPlan) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Get returns a copy of the value of a top-level key.
func (p BuildPlan) Get(key string) (any, bool) {
	v, ok := p.values[key]
	if !ok {
		return nil, false
	}
	return deepCopy(v), true
}

// Lookup resolves a key or a dotted path into nested mappings. At every level
// the longest matching key wins, so "a.b" names a top-level key "a.b" before
// key "b" nested under "a".
func (p BuildPlan) Lookup(path string) (any, bool) {
	segments, ok := splitPath(p.values, path)
	if !ok {
		return nil, false
	}
	v, ok := lookup(p.values, segments)
	if !ok {
		return nil, false
	}
	return deepCopy(v), true
}

// Values returns a copy of the whole key/value mapping.
func (p BuildPlan) Values() map[string]any {
	if p.values == nil {
		return map[string]any{}
	}
	return copyMap(p.values)
}

// Provenance lists the sources whose values survive in key, in the order the
// fragments were applied.
func (p BuildPlan) Provenance(key string) []string {
	return slices.Clone(p.provenance[key])
}

// ProvenanceMap returns the provenance of every top-level key.
func (p BuildPlan) ProvenanceMap() map[string][]string {
	out := make(map[string][]string, len(p.provenance))
	for k, v := range p.provenance {
		out[k] = slices.Clone(v)
	}
	return out
}

// Explain lists the sources behind a leaf path, or behind every leaf under a
// mapping path, in application order. Path is resolved as in Lookup.
func (p BuildPlan) Explain(path string) []string {
	segments, ok := splitPath(p.values, path)
	if !ok {
		return nil
	}
	var out []string
	for _, l := range p.leaves {
		if hasPathPrefix(l.path, segments) {
			out = appendUnique(out, l.sources...)
		}
	}
	slices.SortFunc(out, func(a, b string) int { return cmp.Compare(p.order[a], p.order[b]) })
	return out
}

// Fingerprint is a SHA-256 over the canonical JSON encoding of the values.
// Plans with equal values have equal fingerprints regardless of provenance.
func (p BuildPlan) Fingerprint() string { return p.fingerprint }

func fingerprint(values map[string]any) string {
	// Canonical values always encode; map keys are emitted sorted.
	data, err := json.Marshal(values)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func appendUnique(dst []string, items ...string) []string {
	for _, item := range items {
		if !slices.Contains(dst, item) {
			dst = append(dst, item)
		}
	}
	return dst
}
