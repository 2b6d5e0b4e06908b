package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GDGEN_"

// ConfigPathEnv names an explicit config file, bypassing .gdgen/config.json.
const ConfigPathEnv = EnvPrefix + "CONFIG_PATH"

// envVarMappings maps environment variables to config paths.
var envVarMappings = map[string]string{
	EnvPrefix + "OUTPUT_DIR":                   "outputDir",
	EnvPrefix + "EXCLUDE":                      "exclude",
	EnvPrefix + "CONCURRENCY":                  "concurrency",
	EnvPrefix + "MARKERS_NAMESPACE":            "markers.namespace",
	EnvPrefix + "GENERATORS_MAKE_INTERFACE":    "generators.makeInterface",
	EnvPrefix + "GENERATORS_WHAT_NOTIFICATION": "generators.whatNotification",
	EnvPrefix + "GENERATORS_SCENE_SCRIPT":      "generators.sceneScript",
	EnvPrefix + "GENERATORS_SHADER_SCRIPT":     "generators.shaderScript",
	EnvPrefix + "GENERATORS_PROJECT_CONFIG":    "generators.projectConfig",
	EnvPrefix + "ENGINE_TYPES_FILE":            "engine.typesFile",
	EnvPrefix + "PROJECT_SETTINGS_FILE":        "projectConfig.settingsFile",
	EnvPrefix + "PROJECT_TABLES_FILE":          "projectConfig.tablesFile",
	EnvPrefix + "PROJECT_IS_DEFINED":           "projectConfig.isDefined",
	EnvPrefix + "MANIFEST_ENABLED":             "manifest.enabled",
	EnvPrefix + "MANIFEST_PATH":                "manifest.path",
	EnvPrefix + "WATCH_DEBOUNCE_MS":            "watch.debounceMs",
	EnvPrefix + "LOG_LEVEL":                    "logging.level",
	EnvPrefix + "LOG_FORMAT":                   "logging.format",
	EnvPrefix + "LOG_FILE":                     "logging.file",
}

// EnvOverride records one environment variable that changed the config.
type EnvOverride struct {
	EnvVar string `json:"envVar" yaml:"envVar"`
	Path   string `json:"path" yaml:"path"`
	Value  string `json:"value" yaml:"value"`
}

// LoadResult is a loaded config plus where it came from.
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
	EnvOverrides []EnvOverride
}

// LoadConfigWithDetails loads the config for projectRoot, honoring
// GDGEN_CONFIG_PATH, and applies environment overrides on top.
func LoadConfigWithDetails(projectRoot string) (*LoadResult, error) {
	result := &LoadResult{}

	if path := os.Getenv(ConfigPathEnv); path != "" {
		cfg, err := LoadConfigFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		result.Config = cfg
		result.ConfigPath = path
	} else {
		standard := filepath.Join(projectRoot, Dir, "config.json")
		if _, err := os.Stat(standard); err == nil {
			cfg, err := LoadConfigFromPath(standard)
			if err != nil {
				return nil, fmt.Errorf("load %s: %w", standard, err)
			}
			result.Config = cfg
			result.ConfigPath = standard
		} else {
			result.Config = DefaultConfig()
			result.UsedDefaults = true
		}
	}

	result.EnvOverrides = applyEnvOverrides(result.Config)
	return result, nil
}

// LoadConfigFileWithDetails loads an explicit config file and applies
// environment overrides on top. GDGEN_CONFIG_PATH is not consulted.
func LoadConfigFileWithDetails(path string) (*LoadResult, error) {
	cfg, err := LoadConfigFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return &LoadResult{
		Config:       cfg,
		ConfigPath:   path,
		EnvOverrides: applyEnvOverrides(cfg),
	}, nil
}

// GetSupportedEnvVars returns every recognized override variable, sorted.
func GetSupportedEnvVars() []string {
	vars := make([]string, 0, len(envVarMappings)+1)
	for k := range envVarMappings {
		vars = append(vars, k)
	}
	vars = append(vars, ConfigPathEnv)
	sort.Strings(vars)
	return vars
}

// applyEnvOverrides applies every set variable. Values that do not parse are
// skipped. Overrides are returned in variable order.
func applyEnvOverrides(cfg *Config) []EnvOverride {
	names := make([]string, 0, len(envVarMappings))
	for k := range envVarMappings {
		names = append(names, k)
	}
	sort.Strings(names)

	var applied []EnvOverride
	for _, name := range names {
		value, ok := os.LookupEnv(name)
		if !ok {
			continue
		}
		path := envVarMappings[name]
		if err := applyOverride(cfg, path, value); err != nil {
			continue
		}
		applied = append(applied, EnvOverride{EnvVar: name, Path: path, Value: value})
	}
	return applied
}

func applyOverride(cfg *Config, path, value string) error {
	switch path {
	case "outputDir":
		cfg.OutputDir = value
	case "exclude":
		cfg.Exclude = splitList(value)
	case "concurrency":
		return setInt(&cfg.Concurrency, value)
	case "markers.namespace":
		cfg.Markers.Namespace = value
	case "generators.makeInterface":
		return setBool(&cfg.Generators.MakeInterface, value)
	case "generators.whatNotification":
		return setBool(&cfg.Generators.WhatNotification, value)
	case "generators.sceneScript":
		return setBool(&cfg.Generators.SceneScript, value)
	case "generators.shaderScript":
		return setBool(&cfg.Generators.ShaderScript, value)
	case "generators.projectConfig":
		return setBool(&cfg.Generators.ProjectConfig, value)
	case "engine.typesFile":
		cfg.Engine.TypesFile = value
	case "projectConfig.settingsFile":
		cfg.ProjectConfig.SettingsFile = value
	case "projectConfig.tablesFile":
		cfg.ProjectConfig.TablesFile = value
	case "projectConfig.isDefined":
		return setBool(&cfg.ProjectConfig.IsDefined, value)
	case "manifest.enabled":
		return setBool(&cfg.Manifest.Enabled, value)
	case "manifest.path":
		cfg.Manifest.Path = value
	case "watch.debounceMs":
		return setInt(&cfg.Watch.DebounceMs, value)
	case "logging.level":
		cfg.Logging.Level = value
	case "logging.format":
		cfg.Logging.Format = value
	case "logging.file":
		cfg.Logging.File = value
	default:
		return fmt.Errorf("unknown config path %q", path)
	}
	return nil
}

func setInt(dst *int, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setBool(dst *bool, value string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

// splitList splits a comma or path-list separated value.
func splitList(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == os.PathListSeparator
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
