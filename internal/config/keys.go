package config

import (
	"strconv"
	"strings"

	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// Configuration keys.
const (
	KeyInputDirectory    = "input-directory"
	KeyOutputDirectory   = "output-directory"
	KeyDeepMergeData     = "deep-merge-data"
	KeyDataDirectory     = "data-directory"
	KeyIncludesDirectory = "includes-directory"
	KeyPlugins           = "plugins"
	KeyData              = "data"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "BUILDPLAN_"

// Fragment priorities per source kind.
const (
	PriorityDefaults = 0
	PriorityFile     = 10
	PriorityEnvFile  = 100
	PriorityEnv      = 200
	PriorityOverride = 300
)

// RequiredKeys must be present in every plan.
var RequiredKeys = []string{KeyInputDirectory, KeyOutputDirectory}

// Defaults returns the default value of every known key.
func Defaults() map[string]any {
	return map[string]any{
		KeyInputDirectory:    "src",
		KeyOutputDirectory:   "www",
		KeyDeepMergeData:     true,
		KeyDataDirectory:     "_data",
		KeyIncludesDirectory: "_includes",
		KeyPlugins:           []any{},
		KeyData:              map[string]any{},
	}
}

// DefaultsFragment is the lowest-priority layer.
func DefaultsFragment() resolver.Fragment {
	return resolver.MustFragment("defaults", PriorityDefaults, Defaults(), resolver.WithKind(resolver.KindDefaults))
}

// Coerce converts raw strings from the environment and overrides into the type
// each known key expects. Unknown keys and everything below data stay strings.
func Coerce(path []string, raw string) (any, error) {
	if len(path) != 1 {
		return raw, nil
	}
	switch path[0] {
	case KeyDeepMergeData:
		return strconv.ParseBool(strings.TrimSpace(raw))
	case KeyPlugins:
		plugins := []any{}
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				plugins = append(plugins, p)
			}
		}
		return plugins, nil
	default:
		return raw, nil
	}
}
