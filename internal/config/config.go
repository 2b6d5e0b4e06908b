package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// CurrentVersion is the only config schema version gdgen reads.
const CurrentVersion = 1

// Dir is the per-project state directory, relative to the project root.
const Dir = ".gdgen"

// Config represents the complete gdgen configuration
type Config struct {
	Version     int      `json:"version" yaml:"version" mapstructure:"version"`
	OutputDir   string   `json:"outputDir" yaml:"outputDir" mapstructure:"outputDir"`
	Exclude     []string `json:"exclude" yaml:"exclude" mapstructure:"exclude"`
	Concurrency int      `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	Markers       MarkersConfig       `json:"markers" yaml:"markers" mapstructure:"markers"`
	Generators    GeneratorsConfig    `json:"generators" yaml:"generators" mapstructure:"generators"`
	Engine        EngineConfig        `json:"engine" yaml:"engine" mapstructure:"engine"`
	ProjectConfig ProjectConfigConfig `json:"projectConfig" yaml:"projectConfig" mapstructure:"projectConfig"`
	Manifest      ManifestConfig      `json:"manifest" yaml:"manifest" mapstructure:"manifest"`
	Watch         WatchConfig         `json:"watch" yaml:"watch" mapstructure:"watch"`
	Logging       LoggingConfig       `json:"logging" yaml:"logging" mapstructure:"logging"`
}

// MarkersConfig locates the marker attribute types
type MarkersConfig struct {
	Namespace string `json:"namespace" yaml:"namespace" mapstructure:"namespace"`
}

// GeneratorsConfig switches individual generators on or off
type GeneratorsConfig struct {
	MakeInterface    bool `json:"makeInterface" yaml:"makeInterface" mapstructure:"makeInterface"`
	WhatNotification bool `json:"whatNotification" yaml:"whatNotification" mapstructure:"whatNotification"`
	SceneScript      bool `json:"sceneScript" yaml:"sceneScript" mapstructure:"sceneScript"`
	ShaderScript     bool `json:"shaderScript" yaml:"shaderScript" mapstructure:"shaderScript"`
	ProjectConfig    bool `json:"projectConfig" yaml:"projectConfig" mapstructure:"projectConfig"`
}

// EngineConfig extends the embedded engine type table
type EngineConfig struct {
	TypesFile string `json:"typesFile" yaml:"typesFile" mapstructure:"typesFile"`
}

// ProjectConfigConfig controls the project.godot generator
type ProjectConfigConfig struct {
	SettingsFile string `json:"settingsFile" yaml:"settingsFile" mapstructure:"settingsFile"`
	TablesFile   string `json:"tablesFile" yaml:"tablesFile" mapstructure:"tablesFile"`
	IsDefined    bool   `json:"isDefined" yaml:"isDefined" mapstructure:"isDefined"`
}

// ManifestConfig controls the output manifest store
type ManifestConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path       string `json:"path" yaml:"path" mapstructure:"path"`
	KeepPasses int    `json:"keepPasses" yaml:"keepPasses" mapstructure:"keepPasses"`
}

// WatchConfig controls "gdgen watch"
type WatchConfig struct {
	DebounceMs int `json:"debounceMs" yaml:"debounceMs" mapstructure:"debounceMs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" yaml:"format" mapstructure:"format"`
	Level      string `json:"level" yaml:"level" mapstructure:"level"`
	File       string `json:"file" yaml:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" yaml:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups" mapstructure:"maxBackups"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:   CurrentVersion,
		OutputDir: "Generated",
		Exclude:   []string{},
		Markers: MarkersConfig{
			Namespace: "Generator.Attributes",
		},
		Generators: GeneratorsConfig{
			MakeInterface:    true,
			WhatNotification: true,
			SceneScript:      true,
			ShaderScript:     true,
			ProjectConfig:    true,
		},
		ProjectConfig: ProjectConfigConfig{
			SettingsFile: "project.godot",
			IsDefined:    true,
		},
		Manifest: ManifestConfig{
			Enabled:    true,
			Path:       filepath.Join(Dir, "manifest.db"),
			KeepPasses: 20,
		},
		Watch: WatchConfig{
			DebounceMs: 300,
		},
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "warn",
			MaxSize:    "5MB",
			MaxBackups: 2,
		},
	}
}

// setDefaults registers every default with v so that a partial config file
// keeps the defaults for whatever it leaves out.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("outputDir", d.OutputDir)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("concurrency", d.Concurrency)
	v.SetDefault("markers.namespace", d.Markers.Namespace)
	v.SetDefault("generators.makeInterface", d.Generators.MakeInterface)
	v.SetDefault("generators.whatNotification", d.Generators.WhatNotification)
	v.SetDefault("generators.sceneScript", d.Generators.SceneScript)
	v.SetDefault("generators.shaderScript", d.Generators.ShaderScript)
	v.SetDefault("generators.projectConfig", d.Generators.ProjectConfig)
	v.SetDefault("engine.typesFile", d.Engine.TypesFile)
	v.SetDefault("projectConfig.settingsFile", d.ProjectConfig.SettingsFile)
	v.SetDefault("projectConfig.tablesFile", d.ProjectConfig.TablesFile)
	v.SetDefault("projectConfig.isDefined", d.ProjectConfig.IsDefined)
	v.SetDefault("manifest.enabled", d.Manifest.Enabled)
	v.SetDefault("manifest.path", d.Manifest.Path)
	v.SetDefault("manifest.keepPasses", d.Manifest.KeepPasses)
	v.SetDefault("watch.debounceMs", d.Watch.DebounceMs)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
}

// LoadConfig loads configuration from .gdgen/config.json
func LoadConfig(projectRoot string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(projectRoot, Dir))

	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfigFromPath loads configuration from an explicit file.
func LoadConfigFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to .gdgen/config.json
func (c *Config) Save(projectRoot string) error {
	dir := filepath.Join(projectRoot, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), append(data, '\n'), 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	out := filepath.ToSlash(filepath.Clean(c.OutputDir))
	if c.OutputDir == "" || out == "." || out == ".." || filepath.IsAbs(c.OutputDir) || strings.HasPrefix(out, "../") {
		return &ConfigError{Field: "outputDir", Message: "must be a directory inside the project"}
	}
	if c.Concurrency < 0 {
		return &ConfigError{Field: "concurrency", Message: "must not be negative"}
	}
	if !isDottedName(c.Markers.Namespace) {
		return &ConfigError{Field: "markers.namespace", Message: "must be a dotted C# namespace"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	if c.Manifest.Enabled && c.Manifest.Path == "" {
		return &ConfigError{Field: "manifest.path", Message: "required when the manifest is enabled"}
	}
	if c.Watch.DebounceMs < 0 {
		return &ConfigError{Field: "watch.debounceMs", Message: "must not be negative"}
	}
	if c.Manifest.KeepPasses < 0 {
		return &ConfigError{Field: "manifest.keepPasses", Message: "must not be negative"}
	}
	return nil
}

func isDottedName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			letter := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
			if !letter && (i == 0 || r < '0' || r > '9') {
				return false
			}
		}
	}
	return true
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
