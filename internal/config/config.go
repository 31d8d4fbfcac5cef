// Package config implements the daemon's single global configuration file:
// a JSON mapping of absolute project paths to their derived collection name
// and per-project settings overrides.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings are the per-project, overridable indexing parameters. Zero values
// are never valid overrides: merge only replaces a Defaults() field when the
// override's corresponding field is non-zero.
type Settings struct {
	VectorStoreURL string  `json:"vectorStoreUrl" yaml:"vectorStoreUrl"`
	EmbeddingsURL  string  `json:"embeddingsUrl" yaml:"embeddingsUrl"`
	EmbedModel     string  `json:"embedModel" yaml:"embedModel"`
	VectorSize     int     `json:"vectorSize" yaml:"vectorSize"`
	MaxChunkLines  int     `json:"maxChunkLines" yaml:"maxChunkLines"`
	OverlapLines   int     `json:"overlapLines" yaml:"overlapLines"`
	MaxFileBytes   int64   `json:"maxFileBytes" yaml:"maxFileBytes"`
	TopKDefault    int     `json:"topKDefault" yaml:"topKDefault"`
	ScoreThreshold float64 `json:"scoreThreshold" yaml:"scoreThreshold"`
	ServicePort    int     `json:"servicePort" yaml:"servicePort"`
}

// Defaults returns the hardcoded default settings named in spec.md §4.1.
func Defaults() Settings {
	return Settings{
		VectorStoreURL: "http://localhost:6333",
		EmbeddingsURL:  "http://localhost:11434",
		EmbedModel:     "nomic-embed-text",
		VectorSize:     768,
		MaxChunkLines:  500,
		OverlapLines:   50,
		MaxFileBytes:   2 * 1024 * 1024,
		TopKDefault:    10,
		ScoreThreshold: 0.2,
		ServicePort:    0, // not read by the daemon; the HTTP listen address comes from --http
	}
}

// merge overlays non-zero fields of o onto a copy of s.
func (s Settings) merge(o Settings) Settings {
	out := s
	if o.VectorStoreURL != "" {
		out.VectorStoreURL = o.VectorStoreURL
	}
	if o.EmbeddingsURL != "" {
		out.EmbeddingsURL = o.EmbeddingsURL
	}
	if o.EmbedModel != "" {
		out.EmbedModel = o.EmbedModel
	}
	if o.VectorSize != 0 {
		out.VectorSize = o.VectorSize
	}
	if o.MaxChunkLines != 0 {
		out.MaxChunkLines = o.MaxChunkLines
	}
	if o.OverlapLines != 0 {
		out.OverlapLines = o.OverlapLines
	}
	if o.MaxFileBytes != 0 {
		out.MaxFileBytes = o.MaxFileBytes
	}
	if o.TopKDefault != 0 {
		out.TopKDefault = o.TopKDefault
	}
	if o.ScoreThreshold != 0 {
		out.ScoreThreshold = o.ScoreThreshold
	}
	if o.ServicePort != 0 {
		out.ServicePort = o.ServicePort
	}
	return out
}

// ProjectEntry is one registered project in the global config.
type ProjectEntry struct {
	CollectionName string   `json:"collectionName"`
	Settings       Settings `json:"settings"`
}

// LoggingConfig controls internal/logging's handler selection.
type LoggingConfig struct {
	Level string `json:"level,omitempty"` // debug|info|warn|error, default info
	File  string `json:"file,omitempty"`  // optional log file path
}

// fileSchema is the on-disk JSON shape.
type fileSchema struct {
	Projects json.RawMessage `json:"projects"`
	Logging  LoggingConfig   `json:"logging"`
}

// Config is the loaded, in-memory global configuration.
type Config struct {
	mu       sync.Mutex
	path     string
	Projects map[string]ProjectEntry
	Logging  LoggingConfig
}

// UserConfigPath returns the XDG-aware path to the global config file:
// $XDG_CONFIG_HOME/codeindexd/config.json, or ~/.config/codeindexd/config.json.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "codeindexd", "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "codeindexd", "config.json")
	}
	return filepath.Join(home, ".config", "codeindexd", "config.json")
}

// CollectionName derives the deterministic collection identifier for an
// absolute project path: idx_ + first 16 hex chars of SHA-256(path).
func CollectionName(absPath string) string {
	sum := sha256.Sum256([]byte(absPath))
	return "idx_" + hex.EncodeToString(sum[:])[:16]
}

// Load reads the global config file. A missing file returns empty defaults,
// not an error; a malformed file propagates the JSON error per spec.md §4.1.
func Load() (*Config, error) {
	return LoadPath(UserConfigPath())
}

// LoadPath loads from an explicit path (used by tests).
func LoadPath(path string) (*Config, error) {
	cfg := &Config{path: path, Projects: map[string]ProjectEntry{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw fileSchema
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Logging = raw.Logging

	if len(raw.Projects) == 0 {
		return cfg, nil
	}

	// Legacy migration: "projects" was once a JSON array of path strings.
	var legacy []string
	if err := json.Unmarshal(raw.Projects, &legacy); err == nil {
		for _, p := range legacy {
			cfg.Projects[p] = ProjectEntry{CollectionName: CollectionName(p)}
		}
		return cfg, nil
	}

	var projects map[string]ProjectEntry
	if err := json.Unmarshal(raw.Projects, &projects); err != nil {
		return nil, fmt.Errorf("parse config projects %s: %w", path, err)
	}
	cfg.Projects = projects
	return cfg, nil
}

// Save persists the config as pretty-printed JSON.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Config) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	out := struct {
		Projects map[string]ProjectEntry `json:"projects"`
		Logging  LoggingConfig           `json:"logging"`
	}{Projects: c.Projects, Logging: c.Logging}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(c.path, data, 0o644)
}

// AddProject registers path idempotently, computing collectionName if
// the project is not already present, and persists the change.
func (c *Config) AddProject(path string) (ProjectEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.Projects[path]; ok {
		return entry, nil
	}
	entry := ProjectEntry{CollectionName: CollectionName(path), Settings: Settings{}}
	c.Projects[path] = entry
	if err := c.saveLocked(); err != nil {
		return ProjectEntry{}, err
	}
	return entry, nil
}

// RemoveProject unregisters path and persists the change. No-op if absent.
func (c *Config) RemoveProject(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Projects[path]; !ok {
		return nil
	}
	delete(c.Projects, path)
	return c.saveLocked()
}

// GetProjectConfig returns the merged defaults + overrides for path, or
// false if path is not registered. Precedence is hardcoded defaults ->
// global JSON config entry -> project-local .indexer/settings.yaml.
func (c *Config) GetProjectConfig(path string) (ProjectEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.Projects[path]
	if !ok {
		return ProjectEntry{}, false
	}
	merged, err := ResolveSettings(path, entry.Settings)
	if err != nil {
		merged = Defaults().merge(entry.Settings)
	}
	entry.Settings = merged
	return entry, true
}

// ProjectForCollection reverse-looks-up the project registered under
// collectionID, as every tool call in internal/dispatch carries a
// collectionId rather than a path (spec.md §4.11).
func (c *Config) ProjectForCollection(collectionID string) (path string, entry ProjectEntry, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for p, e := range c.Projects {
		if e.CollectionName == collectionID {
			merged, err := ResolveSettings(p, e.Settings)
			if err != nil {
				merged = Defaults().merge(e.Settings)
			}
			e.Settings = merged
			return p, e, true
		}
	}
	return "", ProjectEntry{}, false
}

// loadProjectSettingsYAML reads <projectRoot>/.indexer/settings.yaml, the
// project-local settings override spec.md's config layering allows
// alongside the global JSON registration.
func loadProjectSettingsYAML(projectRoot string) (Settings, error) {
	data, err := os.ReadFile(filepath.Join(projectRoot, ".indexer", "settings.yaml"))
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse .indexer/settings.yaml: %w", err)
	}
	return s, nil
}
