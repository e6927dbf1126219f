package resolver

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/buildplan/internal/foundation/normalization"
)

// MaxDepth bounds how deeply mappings and lists may nest inside a fragment.
const MaxDepth = 64

// PathSeparator joins nested keys in Explain paths and Lookup.
const PathSeparator = "."

// canonicalizer turns arbitrary decoded values into the closed set of types a
// plan holds: nil, bool, int64, float64, string, time.Time, []any and
// map[string]any. The result never aliases the input.
type canonicalizer struct {
	source   string
	visiting map[refID]struct{}
}

type refID struct {
	ptr uintptr
	len int
}

func canonicalizeMap(source string, values map[string]any) (map[string]any, error) {
	c := &canonicalizer{source: source, visiting: make(map[refID]struct{})}
	out, err := c.value(reflect.ValueOf(values), nil)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return map[string]any{}, nil
	}
	return out.(map[string]any), nil
}

func (c *canonicalizer) fail(path []string, err error, detail string) error {
	return &StructureError{Source: c.source, Path: slices.Clone(path), Err: err, Detail: detail}
}

func (c *canonicalizer) value(v reflect.Value, path []string) (any, error) {
	if len(path) > MaxDepth {
		return nil, c.fail(path, ErrTooDeep, fmt.Sprintf("limit %d", MaxDepth))
	}
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil, nil
	}
	if t, ok := v.Interface().(time.Time); ok {
		return t, nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return nil, c.fail(path, ErrUnsupportedValue, fmt.Sprintf("integer %d overflows int64", u))
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, c.fail(path, ErrUnsupportedValue, "non-finite number")
		}
		return f, nil
	case reflect.Map:
		return c.mapping(v, path)
	case reflect.Slice, reflect.Array:
		return c.list(v, path)
	default:
		return nil, c.fail(path, ErrUnsupportedValue, fmt.Sprintf("type %s", v.Type()))
	}
}

func (c *canonicalizer) enter(id refID, path []string) error {
	if _, seen := c.visiting[id]; seen {
		return c.fail(path, ErrCycle, "")
	}
	c.visiting[id] = struct{}{}
	return nil
}

func (c *canonicalizer) mapping(v reflect.Value, path []string) (any, error) {
	if v.IsNil() {
		return map[string]any{}, nil
	}
	id := refID{ptr: v.Pointer(), len: -1}
	if err := c.enter(id, path); err != nil {
		return nil, err
	}
	defer delete(c.visiting, id)

	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		raw := iter.Key()
		for raw.Kind() == reflect.Interface && !raw.IsNil() {
			raw = raw.Elem()
		}
		var key string
		if raw.Kind() == reflect.String {
			key = raw.String()
		} else {
			key = fmt.Sprint(raw.Interface())
		}
		key = normalization.Key(key)
		child := append(slices.Clone(path), key)
		if key == "" {
			return nil, c.fail(child, ErrEmptyKey, "")
		}
		if _, dup := out[key]; dup {
			return nil, c.fail(child, ErrDuplicateKey, "")
		}
		val, err := c.value(iter.Value(), child)
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

func (c *canonicalizer) list(v reflect.Value, path []string) (any, error) {
	if v.Kind() == reflect.Slice {
		if v.IsNil() {
			return []any{}, nil
		}
		id := refID{ptr: v.Pointer(), len: v.Len()}
		if err := c.enter(id, path); err != nil {
			return nil, err
		}
		defer delete(c.visiting, id)
	}
	out := make([]any, v.Len())
	for i := range v.Len() {
		val, err := c.value(v.Index(i), append(slices.Clone(path), fmt.Sprintf("[%d]", i)))
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// deepCopy copies a canonical value.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}

func copyMap(m map[string]any) map[string]any {
	return deepCopy(m).(map[string]any)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func joinPath(path []string) string {
	return strings.Join(path, PathSeparator)
}

// leaf is a scalar, list or empty mapping in a resolved tree together with the
// sources whose value it holds.
type leaf struct {
	path    []string
	sources []string
}

// pathKey encodes path without ambiguity: keys may contain PathSeparator, so
// each segment is length-prefixed.
func pathKey(path []string) string {
	var b strings.Builder
	for _, seg := range path {
		b.WriteString(strconv.Itoa(len(seg)))
		b.WriteByte(':')
		b.WriteString(seg)
	}
	return b.String()
}

func hasPathPrefix(path, prefix []string) bool {
	return len(path) >= len(prefix) && slices.Equal(path[:len(prefix)], prefix)
}

// splitPath maps a dotted path onto the key segments it names in values.
// Longer keys are tried first at every level, so an exact key containing the
// separator wins over a nested interpretation.
func splitPath(values map[string]any, dotted string) ([]string, bool) {
	return matchSegments(values, strings.Split(dotted, PathSeparator))
}

func matchSegments(values map[string]any, parts []string) ([]string, bool) {
	for n := len(parts); n > 0; n-- {
		key := strings.Join(parts[:n], PathSeparator)
		v, ok := values[key]
		if !ok {
			continue
		}
		if n == len(parts) {
			return []string{key}, true
		}
		if m, ok := v.(map[string]any); ok {
			if rest, ok := matchSegments(m, parts[n:]); ok {
				return append([]string{key}, rest...), true
			}
		}
	}
	return nil, false
}

// lookup follows path through nested mappings.
func lookup(values map[string]any, path []string) (any, bool) {
	var cur any = values
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return cur, true
}
