package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectSettingsFile is an optional per-project override layer, parsed with
// the teacher's own gopkg.in/yaml.v3 dependency (otherwise idle in this
// port — the global config is pinned to JSON by spec.md, but nothing stops
// a project from overriding locally in the format the teacher's own config
// layering pattern uses).
const ProjectSettingsFile = ".indexer/settings.yaml"

// ResolveSettings layers: hardcoded defaults -> the project's global-config
// overrides -> .indexer/settings.yaml (if present). Each layer only
// overrides non-zero fields of the previous one.
func ResolveSettings(projectRoot string, globalOverrides Settings) (Settings, error) {
	resolved := Defaults().merge(globalOverrides)

	path := filepath.Join(projectRoot, ProjectSettingsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return resolved, nil
		}
		return resolved, fmt.Errorf("read %s: %w", path, err)
	}

	var local Settings
	if err := yaml.Unmarshal(data, &local); err != nil {
		return resolved, fmt.Errorf("parse %s: %w", path, err)
	}
	return resolved.merge(local), nil
}
