package fragment

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// Extensions lists the file extensions FromFile understands.
var Extensions = []string{".yaml", ".yml", ".json"}

// IsConfigFile reports whether path has a supported extension.
func IsConfigFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FromFile reads a YAML or JSON mapping. ${VAR} references are expanded before
// parsing; unset variables expand to the empty string. An empty file yields an
// empty fragment. The source identifier defaults to path.
func FromFile(path string, priority int, opts ...Option) (resolver.Fragment, error) {
	o := newOptions(path, resolver.KindFile, opts)
	if !IsConfigFile(path) {
		return resolver.Fragment{}, ferrors.ConfigError("unsupported configuration file type").
			WithContext("path", path).
			WithContext("supported", strings.Join(Extensions, ",")).
			Build()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return resolver.Fragment{}, ferrors.WrapError(err, ferrors.CategoryConfig, "configuration file not found").
				Fatal().UserAction().
				WithContext("path", path).
				Build()
		}
		return resolver.Fragment{}, ferrors.FileSystemError("failed to read configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	expanded := os.Expand(string(data), func(name string) string {
		v, _ := o.lookup(name)
		return v
	})

	return Parse([]byte(expanded), priority, append(opts, WithSource(o.source), WithKind(o.kind))...)
}

// Parse decodes YAML (or JSON, which YAML accepts) into a fragment. The
// document's top level must be a mapping.
func Parse(data []byte, priority int, opts ...Option) (resolver.Fragment, error) {
	o := newOptions("inline", resolver.KindFile, opts)

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return resolver.Fragment{}, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration").
			Fatal().UserAction().
			WithContext("source", o.source).
			Build()
	}

	var values map[string]any
	switch d := doc.(type) {
	case nil:
		values = map[string]any{}
	case map[string]any:
		values = d
	case map[any]any:
		values = make(map[string]any, len(d))
		for k, v := range d {
			ks, ok := k.(string)
			if !ok {
				return resolver.Fragment{}, ferrors.ConfigError("top-level keys must be strings").
					WithContext("source", o.source).
					Build()
			}
			values[ks] = v
		}
	default:
		return resolver.Fragment{}, ferrors.ConfigError("configuration must be a mapping").
			WithContext("source", o.source).
			Build()
	}

	return build(o, priority, values)
}

func build(o *options, priority int, values map[string]any) (resolver.Fragment, error) {
	f, err := resolver.NewFragment(o.source, priority, values, resolver.WithKind(o.kind))
	if err != nil {
		return resolver.Fragment{}, ferrors.WrapError(err, ferrors.CategoryStructure, "invalid configuration fragment").
			Fatal().UserAction().
			WithContext("source", o.source).
			Build()
	}
	return f, nil
}
