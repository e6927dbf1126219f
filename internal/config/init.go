package config

import (
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
)

// Init writes an example configuration file. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Settings{
		InputDirectory:    "src",
		OutputDirectory:   "www",
		DeepMergeData:     true,
		DataDirectory:     "_data",
		IncludesDirectory: "_includes",
		Plugins:           []string{},
		Data: map[string]any{
			"site": map[string]any{"title": "My Site", "language": "en"},
		},
	}
	data, err := yaml.Marshal(&example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to marshal example configuration").Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.FileSystemError("failed to write configuration file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
