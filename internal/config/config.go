// Package config assembles CLI configuration from defaults, an optional YAML
// file, the environment (optionally seeded from a .env file) and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/dab-demo/dab-demo/internal/paths"
)

// Config controls the CLI behavior.
type Config struct {
	ConfigFile  string
	ProjectRoot string

	LogFormat string
	LogLevel  string

	Namespace     string
	ConfigMapName string
	Kubeconfig    string

	RegistryRepo string
	RegistryTag  string

	DatabricksHost  string
	DatabricksToken string
	WarehouseID     string
	LocalTablesDir  string
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *Config {
	return &Config{
		LogFormat:     "console",
		LogLevel:      "info",
		Namespace:     "default",
		ConfigMapName: "common-framework-config",
	}
}

// BindFlags registers one flag per setting on fs, with Defaults as flag defaults.
func BindFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("config", "", "path to a YAML config file")
	fs.String("project-root", "", "bundle project root (defaults to the dab_demo directory of this repository)")
	fs.String("log-format", d.LogFormat, "log format: json|console")
	fs.String("log-level", d.LogLevel, "log level: debug|info|warn|error")
	fs.String("namespace", d.Namespace, "namespace of the shared config ConfigMap")
	fs.String("configmap-name", d.ConfigMapName, "name of the shared config ConfigMap")
	fs.String("kubeconfig", "", "path to kubeconfig")
	fs.String("registry-repo", "", "OCI repository holding the shared framework")
	fs.String("registry-tag", "", "tag to sync (latest when empty)")
	fs.String("databricks-host", "", "workspace URL for remote sessions")
	fs.String("databricks-token", "", "access token for remote sessions")
	fs.String("warehouse-id", "", "SQL warehouse for remote sessions")
	fs.String("local-tables-dir", "", "directory of JSON tables for local sessions (defaults to <project>/tests/data)")
}

// Load resolves the configuration. Precedence, lowest first: defaults, the YAML
// file named by --config or DAB_CONFIG, the environment, explicitly set flags.
func Load(fs *pflag.FlagSet, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Defaults()

	cfg.ConfigFile = expandPath(getenv("DAB_CONFIG"))
	if fs != nil && fs.Changed("config") {
		v, _ := fs.GetString("config")
		cfg.ConfigFile = expandPath(v)
	}
	if cfg.ConfigFile != "" {
		fileCfg, err := loadFileConfig(cfg.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %q: %w", cfg.ConfigFile, err)
		}
		applyFileConfig(cfg, fileCfg)
	}

	applyEnv(cfg, getenv)
	if fs != nil {
		applyFlags(cfg, fs)
	}
	return cfg, nil
}

// Paths returns the project paths for cfg. An explicit project root yields its
// own value and leaves the process-wide default alone; without one the
// repository's dab_demo directory is used.
func (c *Config) Paths() (paths.ProjectPaths, error) {
	if c.ProjectRoot != "" {
		return paths.New(c.ProjectRoot)
	}
	return paths.Default(), nil
}

// TablesDir returns the local tables directory for p.
func (c *Config) TablesDir(p paths.ProjectPaths) string {
	if c.LocalTablesDir != "" {
		return c.LocalTablesDir
	}
	return filepath.Join(p.Tests(), "data")
}

var envVars = []struct {
	name string
	set  func(*Config, string)
}{
	{"DAB_PROJECT_ROOT", func(c *Config, v string) { c.ProjectRoot = expandPath(v) }},
	{"DAB_LOG_FORMAT", func(c *Config, v string) { c.LogFormat = v }},
	{"DAB_LOG_LEVEL", func(c *Config, v string) { c.LogLevel = v }},
	{"DAB_NAMESPACE", func(c *Config, v string) { c.Namespace = v }},
	{"DAB_CONFIGMAP_NAME", func(c *Config, v string) { c.ConfigMapName = v }},
	{"KUBECONFIG", func(c *Config, v string) { c.Kubeconfig = expandPath(v) }},
	{"DAB_REGISTRY_REPO", func(c *Config, v string) { c.RegistryRepo = v }},
	{"DAB_REGISTRY_TAG", func(c *Config, v string) { c.RegistryTag = v }},
	{"DATABRICKS_HOST", func(c *Config, v string) { c.DatabricksHost = v }},
	{"DATABRICKS_TOKEN", func(c *Config, v string) { c.DatabricksToken = v }},
	{"DATABRICKS_WAREHOUSE_ID", func(c *Config, v string) { c.WarehouseID = v }},
	{"DAB_LOCAL_TABLES_DIR", func(c *Config, v string) { c.LocalTablesDir = expandPath(v) }},
}

func applyEnv(cfg *Config, getenv func(string) string) {
	for _, ev := range envVars {
		if v := strings.TrimSpace(getenv(ev.name)); v != "" {
			ev.set(cfg, v)
		}
	}
}

var flagVars = []struct {
	name string
	set  func(*Config, string)
}{
	{"project-root", func(c *Config, v string) { c.ProjectRoot = expandPath(v) }},
	{"log-format", func(c *Config, v string) { c.LogFormat = v }},
	{"log-level", func(c *Config, v string) { c.LogLevel = v }},
	{"namespace", func(c *Config, v string) { c.Namespace = v }},
	{"configmap-name", func(c *Config, v string) { c.ConfigMapName = v }},
	{"kubeconfig", func(c *Config, v string) { c.Kubeconfig = expandPath(v) }},
	{"registry-repo", func(c *Config, v string) { c.RegistryRepo = v }},
	{"registry-tag", func(c *Config, v string) { c.RegistryTag = v }},
	{"databricks-host", func(c *Config, v string) { c.DatabricksHost = v }},
	{"databricks-token", func(c *Config, v string) { c.DatabricksToken = v }},
	{"warehouse-id", func(c *Config, v string) { c.WarehouseID = v }},
	{"local-tables-dir", func(c *Config, v string) { c.LocalTablesDir = expandPath(v) }},
}

func applyFlags(cfg *Config, fs *pflag.FlagSet) {
	for _, fv := range flagVars {
		if !fs.Changed(fv.name) {
			continue
		}
		if v, err := fs.GetString(fv.name); err == nil {
			fv.set(cfg, strings.TrimSpace(v))
		}
	}
}

// LoadDotEnv walks up from dir looking for a .env file and loads the first one
// found. Variables already set in the environment are not overridden.
// Returns the loaded path, or "" when no file was found.
func LoadDotEnv(dir string) (string, error) {
	for {
		envFile := filepath.Join(dir, ".env")
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return "", fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			return envFile, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func expandPath(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return trimmed
	}
	expanded := os.ExpandEnv(trimmed)
	if strings.HasPrefix(expanded, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
		}
	}
	return expanded
}
