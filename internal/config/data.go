package config

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/buildplan/internal/foundation/errors"
	"git.home.luguber.info/inful/buildplan/internal/fragment"
	"git.home.luguber.info/inful/buildplan/internal/logfields"
	"git.home.luguber.info/inful/buildplan/internal/resolver"
)

// Data fragment priorities: global data from the configuration sits below
// every data file.
const (
	PriorityConfigData = 0
	PriorityDataFile   = 1
)

// DataFragments builds the data cascade for settings rooted at root: the
// configuration's data mapping first, then every YAML/JSON file under the data
// directory in lexical path order. A file's contents are nested under its path
// without extension, so _data/site/nav.yaml provides site.nav. All files share
// one priority; two files mapping to the same key (site.yaml and site.json)
// combine in lexical order under the data policy. A missing data directory
// yields only the configuration fragment.
func DataFragments(root string, settings Settings) ([]resolver.Fragment, error) {
	global, err := resolver.NewFragment("config:"+KeyData, PriorityConfigData, settings.Data, resolver.WithKind(resolver.KindData))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStructure, "invalid data mapping").Fatal().Build()
	}
	fragments := []resolver.Fragment{global}

	dir := settings.DataPath(root)
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fragments, nil
	}
	if err != nil {
		return nil, ferrors.FileSystemError("failed to stat data directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	if !info.IsDir() {
		return nil, ferrors.ConfigError("data directory is not a directory").WithContext("path", dir).Build()
	}

	// WalkDir visits entries in lexical order.
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !fragment.IsConfigFile(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		nesting := strings.Split(strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel)), "/")

		f, err := fragment.FromFile(path, PriorityDataFile, fragment.WithSource(filepath.ToSlash(filepath.Join(settings.DataDirectory, rel))))
		if err != nil {
			return err
		}
		var nested any = f.Values()
		for i := len(nesting) - 1; i >= 0; i-- {
			nested = map[string]any{nesting[i]: nested}
		}
		wrapped, err := resolver.NewFragment(f.Source(), PriorityDataFile, nested.(map[string]any), resolver.WithKind(resolver.KindData))
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryStructure, "invalid data file").
				WithContext("path", path).
				Build()
		}
		fragments = append(fragments, wrapped)
		return nil
	})
	if err != nil {
		if _, ok := ferrors.AsClassified(err); ok {
			return nil, err
		}
		return nil, ferrors.FileSystemError("failed to read data directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	return fragments, nil
}

// ResolveData merges data fragments under the policy chosen by deep-merge-data.
func (l *Loader) ResolveData(settings Settings, fragments []resolver.Fragment) (resolver.BuildPlan, error) {
	policy := settings.DataPolicy()
	l.logger.Debug("Resolving data cascade",
		logfields.Policy(string(policy)),
		logfields.Fragments(len(fragments)),
		slog.Bool(KeyDeepMergeData, settings.DeepMergeData))
	return l.Resolve(fragments, policy)
}
