package fragment

import (
	"strings"

	"github.com/joho/godotenv"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// NestingSeparator splits an environment variable name into nested keys.
const NestingSeparator = "__"

// EnvKey maps a variable name to a key path: the prefix is stripped, the rest
// lower-cased, "__" nests and "_" becomes "-". It reports false for variables
// without the prefix.
//
//	BUILDPLAN_OUTPUT_DIRECTORY   -> [output-directory]
//	BUILDPLAN_DATA__SITE_TITLE   -> [data site-title]
func EnvKey(prefix, name string) ([]string, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" {
		return nil, false
	}
	parts := strings.Split(rest, NestingSeparator)
	for i, p := range parts {
		p = strings.ToLower(strings.Trim(p, "_"))
		if p == "" {
			return nil, false
		}
		parts[i] = strings.ReplaceAll(p, "_", "-")
	}
	return parts, true
}

// FromEnv builds a fragment from KEY=VALUE entries (os.Environ format) that
// carry prefix. Entries are applied in sorted order, so a nested variable and
// a scalar for the same key resolve the same way on every run.
func FromEnv(prefix string, priority int, environ []string, opts ...Option) (resolver.Fragment, error) {
	o := newOptions("env:"+prefix+"*", resolver.KindEnv, opts)
	vars := make(map[string]string)
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		vars[name] = value
	}
	return fromVars(o, prefix, priority, vars)
}

// FromEnvFile reads a .env file with godotenv and maps its variables like
// FromEnv. The process environment is left untouched.
func FromEnvFile(path, prefix string, priority int, opts ...Option) (resolver.Fragment, error) {
	o := newOptions(path, resolver.KindEnv, opts)
	vars, err := godotenv.Read(path)
	if err != nil {
		return resolver.Fragment{}, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read env file").
			Fatal().UserAction().
			WithContext("path", path).
			Build()
	}
	return fromVars(o, prefix, priority, vars)
}

func fromVars(o *options, prefix string, priority int, vars map[string]string) (resolver.Fragment, error) {
	values := make(map[string]any)
	for _, name := range sortedNames(vars) {
		path, ok := EnvKey(prefix, name)
		if !ok {
			continue
		}
		if err := assign(o, values, path, vars[name]); err != nil {
			return resolver.Fragment{}, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid environment value").
				Fatal().UserAction().
				WithContext("variable", name).
				Build()
		}
	}
	return build(o, priority, values)
}
