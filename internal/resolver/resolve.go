package resolver

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
)

// Resolve merges fragments, lowest priority first, into a BuildPlan under
// policy. It never mutates its inputs and returns no plan on error.
func Resolve(fragments []Fragment, policy MergePolicy) (BuildPlan, error) {
	if len(fragments) == 0 {
		return BuildPlan{}, ErrNoFragments
	}
	if !policy.Valid() {
		return BuildPlan{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
	for i, f := range fragments {
		if !f.valid() {
			return BuildPlan{}, fmt.Errorf("fragment %d: %w", i, ErrInvalidFragment)
		}
	}

	ordered := slices.Clone(fragments)
	slices.SortStableFunc(ordered, func(a, b Fragment) int { return cmp.Compare(a.priority, b.priority) })

	m := &merger{
		policy: policy,
		values: make(map[string]any),
		leaves: make(map[string]*leaf),
		setBy:  make(map[string][]string),
		order:  make(map[string]int),
	}
	for _, f := range ordered {
		if _, seen := m.order[f.source]; !seen {
			m.order[f.source] = len(m.order)
		}
		if err := m.apply(f); err != nil {
			return BuildPlan{}, err
		}
	}
	return m.plan(), nil
}

type merger struct {
	policy MergePolicy
	values map[string]any
	// leaves holds every leaf (scalar, list or empty mapping) keyed by pathKey.
	leaves map[string]*leaf
	// setBy tracks, per top-level key, the sources that agreed on its value.
	setBy map[string][]string
	order map[string]int
}

func (m *merger) apply(f Fragment) error {
	for _, key := range f.Keys() {
		incoming := f.values[key]
		path := []string{key}
		existing, ok := m.values[key]
		if !ok {
			m.values[key] = deepCopy(incoming)
			m.addLeaves(path, incoming, f.source)
			m.setBy[key] = []string{f.source}
			continue
		}
		switch m.policy {
		case PolicyOverwrite:
			m.values[key] = m.replace(path, incoming, f.source)
			m.setBy[key] = []string{f.source}
		case PolicyDeepMerge:
			m.values[key] = m.merge(path, existing, incoming, f.source)
			m.setBy[key] = appendUnique(m.setBy[key], f.source)
		case PolicyReject:
			if !reflect.DeepEqual(existing, incoming) {
				return &ConflictError{Key: key, First: m.setBy[key][0], Second: f.source}
			}
			m.attributeAll(path, f.source)
			m.setBy[key] = appendUnique(m.setBy[key], f.source)
		}
	}
	return nil
}

// merge combines two values at path under PolicyDeepMerge, mutating existing
// (which the merger owns) when both are mappings. Recursion depth is bounded by
// MaxDepth, which NewFragment enforces on every input.
func (m *merger) merge(path []string, existing, incoming any, source string) any {
	em, eok := existing.(map[string]any)
	im, iok := incoming.(map[string]any)
	if !eok || !iok {
		return m.replace(path, incoming, source)
	}
	if len(im) == 0 {
		if len(em) == 0 {
			m.attributeAll(path, source)
		}
		return em
	}
	if len(em) == 0 {
		delete(m.leaves, pathKey(path))
	}
	for _, k := range sortedKeys(im) {
		child := append(slices.Clone(path), k)
		if ev, ok := em[k]; ok {
			em[k] = m.merge(child, ev, im[k], source)
			continue
		}
		em[k] = deepCopy(im[k])
		m.addLeaves(child, im[k], source)
	}
	return em
}

// replace drops every attribution under path and attributes incoming to source.
func (m *merger) replace(path []string, incoming any, source string) any {
	for k, l := range m.leaves {
		if hasPathPrefix(l.path, path) {
			delete(m.leaves, k)
		}
	}
	m.addLeaves(path, incoming, source)
	return deepCopy(incoming)
}

func (m *merger) addLeaves(path []string, v any, source string) {
	if mv, ok := v.(map[string]any); ok && len(mv) > 0 {
		for k, child := range mv {
			m.addLeaves(append(slices.Clone(path), k), child, source)
		}
		return
	}
	m.leaves[pathKey(path)] = &leaf{path: slices.Clone(path), sources: []string{source}}
}

// attributeAll records source as an additional contributor to every leaf under path.
func (m *merger) attributeAll(path []string, source string) {
	for _, l := range m.leaves {
		if hasPathPrefix(l.path, path) {
			l.sources = appendUnique(l.sources, source)
		}
	}
}

func (m *merger) plan() BuildPlan {
	byOrder := func(a, b string) int { return cmp.Compare(m.order[a], m.order[b]) }

	provenance := make(map[string][]string, len(m.values))
	leaves := make([]leaf, 0, len(m.leaves))
	for _, l := range m.leaves {
		slices.SortFunc(l.sources, byOrder)
		provenance[l.path[0]] = appendUnique(provenance[l.path[0]], l.sources...)
		leaves = append(leaves, *l)
	}
	for key := range provenance {
		slices.SortFunc(provenance[key], byOrder)
	}
	return BuildPlan{
		policy:      m.policy,
		values:      m.values,
		provenance:  provenance,
		leaves:      leaves,
		order:       m.order,
		fingerprint: fingerprint(m.values),
	}
}
