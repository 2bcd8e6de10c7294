package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads a config file on top of the defaults. Keys missing from the file
// keep their default value. YAML, JSON and TOML files are accepted.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := LoadInto(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInto overlays the file at path onto cfg.
func LoadInto(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".json":
		err = unmarshalJSON(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return &ConfigError{Field: "file", Value: path, Reason: err.Error()}
	}
	return nil
}

// Save writes cfg to path, choosing the format by extension.
func Save(cfg *Config, path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		data, err = toml.Marshal(cfg)
	case ".json":
		data, err = marshalJSON(cfg)
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(cfg)
		enc.Close()
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// unmarshalJSON decodes with JSON semantics (a repeated key keeps its last
// value) and then applies the result through the YAML tags.
func unmarshalJSON(data []byte, cfg *Config) error {
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	raw, err := yaml.Marshal(generic)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, cfg)
}

// marshalJSON goes through the YAML tags so the JSON keys match the other formats.
func marshalJSON(cfg *Config) ([]byte, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.MarshalIndent(generic, "", "  ")
}
