package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSettings is returned by Validate when a setting is out of range.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds all configuration options.
type Settings struct {
	// Catalog settings
	OutputsPath    string   `json:"outputs_path" yaml:"outputs_path"`
	Extensions     []string `json:"extensions" yaml:"extensions"`
	ExtrasMarker   string   `json:"extras_marker" yaml:"extras_marker"`
	Workers        int      `json:"workers" yaml:"workers"`
	ReadDimensions bool     `json:"read_dimensions" yaml:"read_dimensions"`
	SkipHidden     bool     `json:"skip_hidden" yaml:"skip_hidden"`

	// Display settings
	MaxDisplay int  `json:"max_display" yaml:"max_display"`
	Shuffle    bool `json:"shuffle" yaml:"shuffle"`

	// Export settings
	ExportFormat string `json:"export_format" yaml:"export_format"` // paths, csv, json, yaml, m3u
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		OutputsPath:    filepath.Join(homeDir, "stable-diffusion-webui", "outputs"),
		Extensions:     []string{".png"},
		ExtrasMarker:   "extras",
		Workers:        8,
		ReadDimensions: true,
		SkipHidden:     true,

		MaxDisplay: 100,
		Shuffle:    true,

		ExportFormat: "paths",
	}
}

// Load reads settings from a JSON or YAML file.
//
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
// Fields missing from the file keep their default values. A missing file
// yields DefaultSettings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if isYAML(path) {
		err = yaml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	settings.normalize()
	return settings, nil
}

// Save writes settings to a JSON or YAML file, chosen by extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks that the settings can drive a catalog build.
func (s *Settings) Validate() error {
	if s.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidSettings, s.Workers)
	}
	if len(s.Extensions) == 0 {
		return fmt.Errorf("%w: no image extensions configured", ErrInvalidSettings)
	}
	if s.MaxDisplay < 0 {
		return fmt.Errorf("%w: max_display must not be negative", ErrInvalidSettings)
	}
	return nil
}

// HasExtension reports whether name carries one of the configured extensions.
// The comparison is case-insensitive.
func (s *Settings) HasExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range s.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// normalize lowercases extensions and adds a missing leading dot.
func (s *Settings) normalize() {
	for i, e := range s.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		s.Extensions[i] = e
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
