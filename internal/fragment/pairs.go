package fragment

import (
	"fmt"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// FromPairs builds a fragment from key=value strings. Dotted keys create
// nested mappings: "data.site.title=Docs".
func FromPairs(source string, priority int, pairs []string, opts ...Option) (resolver.Fragment, error) {
	o := newOptions(source, resolver.KindOverride, opts)
	values := make(map[string]any)
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return resolver.Fragment{}, ferrors.ConfigError("override must have the form key=value").
				WithContext("override", pair).
				Build()
		}
		if err := assign(o, values, strings.Split(key, resolver.PathSeparator), raw); err != nil {
			return resolver.Fragment{}, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid override").
				Fatal().UserAction().
				WithContext("override", pair).
				Build()
		}
	}
	return build(o, priority, values)
}

// assign stores raw (coerced) at path, creating intermediate mappings. A later
// assignment to the same path wins; assigning below a scalar is an error.
func assign(o *options, values map[string]any, path []string, raw string) error {
	v, err := o.value(path, raw)
	if err != nil {
		return err
	}
	cur := values
	for i, seg := range path[:len(path)-1] {
		next, exists := cur[seg]
		if !exists {
			m := make(map[string]any)
			cur[seg] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%q is not a mapping", strings.Join(path[:i+1], resolver.PathSeparator))
		}
		cur = m
	}
	last := path[len(path)-1]
	if _, isMap := cur[last].(map[string]any); isMap {
		return fmt.Errorf("%q is a mapping", strings.Join(path, resolver.PathSeparator))
	}
	cur[last] = v
	return nil
}

func sortedNames(vars map[string]string) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
