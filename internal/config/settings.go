package config

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/buildplan/internal/foundation"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// Settings is the typed view of a resolved plan.
type Settings struct {
	InputDirectory    string         `yaml:"input-directory" json:"input-directory"`
	OutputDirectory   string         `yaml:"output-directory" json:"output-directory"`
	DeepMergeData     bool           `yaml:"deep-merge-data" json:"deep-merge-data"`
	DataDirectory     string         `yaml:"data-directory" json:"data-directory"`
	IncludesDirectory string         `yaml:"includes-directory" json:"includes-directory"`
	Plugins           []string       `yaml:"plugins" json:"plugins"`
	Data              map[string]any `yaml:"data" json:"data"`
}

// DataPolicy is the merge policy for data fragments selected by deep-merge-data.
func (s Settings) DataPolicy() resolver.MergePolicy {
	if s.DeepMergeData {
		return resolver.PolicyDeepMerge
	}
	return resolver.PolicyOverwrite
}

// DataPath is the data directory on disk, relative to root.
func (s Settings) DataPath(root string) string {
	return filepath.Join(root, s.InputDirectory, s.DataDirectory)
}

// settingsRules checks a decoded Settings beyond its types.
var settingsRules = foundation.NewValidatorChain(
	foundation.NotBlank(KeyInputDirectory, func(s Settings) string { return s.InputDirectory }),
	foundation.NotBlank(KeyOutputDirectory, func(s Settings) string { return s.OutputDirectory }),
	foundation.NotBlank(KeyDataDirectory, func(s Settings) string { return s.DataDirectory }),
	foundation.NotBlank(KeyIncludesDirectory, func(s Settings) string { return s.IncludesDirectory }),
	distinctDirectories,
)

func distinctDirectories(s Settings) foundation.ValidationResult {
	if s.InputDirectory != "" && s.OutputDirectory != "" &&
		filepath.Clean(s.InputDirectory) == filepath.Clean(s.OutputDirectory) {
		return foundation.Invalid(foundation.NewFieldError(KeyOutputDirectory, foundation.CodeDistinct,
			"must differ from %s", KeyInputDirectory))
	}
	return foundation.Valid()
}

// Decode reads Settings out of plan. Every wrongly typed or invalid field is
// reported in one validation error. Keys missing from plan keep their zero
// value and fail the not-blank rules.
func Decode(plan resolver.BuildPlan) (Settings, error) {
	d := decoder{plan: plan}
	s := Settings{
		InputDirectory:    d.directory(KeyInputDirectory),
		OutputDirectory:   d.directory(KeyOutputDirectory),
		DeepMergeData:     d.boolean(KeyDeepMergeData),
		DataDirectory:     d.directory(KeyDataDirectory),
		IncludesDirectory: d.directory(KeyIncludesDirectory),
		Plugins:           d.stringList(KeyPlugins),
		Data:              d.mapping(KeyData),
	}
	result := d.result
	for _, fe := range settingsRules.Validate(s).Errors {
		if !result.Has(fe.Field) {
			result.Add(fe)
		}
	}
	if err := result.ToError("invalid configuration values"); err != nil {
		return Settings{}, err
	}
	return s, nil
}

type decoder struct {
	plan   resolver.BuildPlan
	result foundation.ValidationResult
}

func (d *decoder) problem(key, code, format string, args ...any) {
	d.result.Add(foundation.NewFieldError(key, code, format, args...))
}

func (d *decoder) directory(key string) string {
	v, ok := d.plan.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.problem(key, foundation.CodeType, "expected string, got %T", v)
		return ""
	}
	return s
}

func (d *decoder) boolean(key string) bool {
	v, ok := d.plan.Get(key)
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.problem(key, foundation.CodeType, "expected boolean, got %T", v)
	}
	return b
}

func (d *decoder) stringList(key string) []string {
	v, ok := d.plan.Get(key)
	if !ok || v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		d.problem(key, foundation.CodeType, "expected list, got %T", v)
		return nil
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok || s == "" {
			d.problem(fmt.Sprintf("%s[%d]", key, i), foundation.CodeType, "expected non-empty string")
			continue
		}
		out = append(out, s)
	}
	return out
}

func (d *decoder) mapping(key string) map[string]any {
	v, ok := d.plan.Get(key)
	if !ok || v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		d.problem(key, foundation.CodeType, "expected mapping, got %T", v)
	}
	return m
}
