package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileConfig represents the structured YAML configuration file.
type FileConfig struct {
	Project  *ProjectFileConfig  `yaml:"project"`
	Logging  *LoggingFileConfig  `yaml:"logging"`
	Publish  *PublishFileConfig  `yaml:"publish"`
	Registry *RegistryFileConfig `yaml:"registry"`
	Session  *SessionFileConfig  `yaml:"session"`
}

type ProjectFileConfig struct {
	Root *string `yaml:"root"`
}

type LoggingFileConfig struct {
	Format *string `yaml:"format"`
	Level  *string `yaml:"level"`
}

type PublishFileConfig struct {
	Namespace     *string `yaml:"namespace"`
	ConfigMapName *string `yaml:"configmap_name"`
	Kubeconfig    *string `yaml:"kubeconfig"`
}

type RegistryFileConfig struct {
	Repo *string `yaml:"repo"`
	Tag  *string `yaml:"tag"`
}

type SessionFileConfig struct {
	Host           *string `yaml:"host"`
	Token          *string `yaml:"token"`
	WarehouseID    *string `yaml:"warehouse_id"`
	LocalTablesDir *string `yaml:"local_tables_dir"`
}

func loadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFileConfig(cfg *Config, fileCfg *FileConfig) {
	if cfg == nil || fileCfg == nil {
		return
	}
	if fileCfg.Project != nil && fileCfg.Project.Root != nil {
		cfg.ProjectRoot = expandPath(*fileCfg.Project.Root)
	}
	if fileCfg.Logging != nil {
		logging := fileCfg.Logging
		if logging.Format != nil {
			cfg.LogFormat = strings.TrimSpace(*logging.Format)
		}
		if logging.Level != nil {
			cfg.LogLevel = strings.TrimSpace(*logging.Level)
		}
	}
	if fileCfg.Publish != nil {
		publish := fileCfg.Publish
		if publish.Namespace != nil {
			cfg.Namespace = strings.TrimSpace(*publish.Namespace)
		}
		if publish.ConfigMapName != nil {
			cfg.ConfigMapName = strings.TrimSpace(*publish.ConfigMapName)
		}
		if publish.Kubeconfig != nil {
			cfg.Kubeconfig = expandPath(*publish.Kubeconfig)
		}
	}
	if fileCfg.Registry != nil {
		registry := fileCfg.Registry
		if registry.Repo != nil {
			cfg.RegistryRepo = strings.TrimSpace(*registry.Repo)
		}
		if registry.Tag != nil {
			cfg.RegistryTag = strings.TrimSpace(*registry.Tag)
		}
	}
	if fileCfg.Session != nil {
		session := fileCfg.Session
		if session.Host != nil {
			cfg.DatabricksHost = strings.TrimSpace(*session.Host)
		}
		if session.Token != nil {
			cfg.DatabricksToken = strings.TrimSpace(*session.Token)
		}
		if session.WarehouseID != nil {
			cfg.WarehouseID = strings.TrimSpace(*session.WarehouseID)
		}
		if session.LocalTablesDir != nil {
			cfg.LocalTablesDir = expandPath(*session.LocalTablesDir)
		}
	}
}
