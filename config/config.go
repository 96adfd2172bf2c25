package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for mvcscan.
type Config struct {
	Scan        ScanConfig        `yaml:"scan"`
	Dialects    DialectConfig     `yaml:"dialects"`
	Conventions ConventionsConfig `yaml:"conventions"`
	Store       StoreConfig       `yaml:"store"`
	Watch       WatchConfig       `yaml:"watch"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ScanConfig holds repository walk filters.
type ScanConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// DialectConfig maps file extensions to extraction pipelines.
type DialectConfig struct {
	Structured []string `yaml:"structured"`
	Template   []string `yaml:"template"`
	Script     []string `yaml:"script"`
}

// ConventionsConfig holds the MVC naming rules.
type ConventionsConfig struct {
	ControllerSuffix      string   `yaml:"controller_suffix"`
	PersistenceMarker     string   `yaml:"persistence_marker"`
	CollectionMarker      string   `yaml:"collection_marker"`
	TemplateExtension     string   `yaml:"template_extension"`
	ModelSuffixes         []string `yaml:"model_suffixes"`
	ValidationAnnotations []string `yaml:"validation_annotations"`
}

// StoreConfig holds result store configuration.
type StoreConfig struct {
	Path string `yaml:"path"` // empty means <root>/.mvcscan/chunks.db
}

// WatchConfig holds watch mode configuration.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Includes: []string{"**/*"},
			Excludes: []string{"**/.git/**", "**/bin/**", "**/obj/**", "**/node_modules/**", "**/.mvcscan/**"},
		},
		Dialects: DialectConfig{
			Structured: []string{".cs"},
			Template:   []string{".cshtml"},
			Script:     []string{".js"},
		},
		Conventions: ConventionsConfig{
			ControllerSuffix:  "Controller",
			PersistenceMarker: "DbContext",
			CollectionMarker:  "DbSet",
			TemplateExtension: "cshtml",
			ModelSuffixes:     []string{"ViewModel", "Model"},
			ValidationAnnotations: []string{
				"Required", "Range", "StringLength", "MaxLength",
				"MinLength", "RegularExpression", "EmailAddress",
			},
		},
		Watch: WatchConfig{
			DebounceMS: 200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for mvcscan.yaml,
// then .mvcscan/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "mvcscan.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".mvcscan", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StorePath returns the result database path for a repository root.
func (c *Config) StorePath(dir string) string {
	if c.Store.Path != "" {
		if filepath.IsAbs(c.Store.Path) {
			return c.Store.Path
		}
		return filepath.Join(dir, c.Store.Path)
	}
	return filepath.Join(dir, ".mvcscan", "chunks.db")
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMS) * time.Millisecond
}

// NormalizedLevel returns the log level lower-cased, defaulting to info.
func (c *Config) NormalizedLevel() string {
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		return "info"
	}
	return level
}

// EnsureDir ensures the directory holding the store exists.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}
