package main

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the tokprobe configuration file
// ($XDG_CONFIG_HOME/tokprobe/config.yaml). Pointer fields distinguish "not
// set" from zero values.
type Config struct {
	ModelsDir  string `yaml:"models_dir"`
	Model      string `yaml:"model"`
	MaxContext *int64 `yaml:"max_context"`
	TopK       *int64 `yaml:"top_k"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tokprobe", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't
// exist or doesn't parse.
func LoadConfig() Config {
	cfg, err := loadConfigFile(configPath())
	if err != nil {
		return Config{}
	}
	return cfg
}

func loadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// isSet is the subset of *cli.Command the apply functions need.
type isSet interface {
	IsSet(name string) bool
}

func applyLogConfig(c isSet, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyModelConfig applies config file defaults to the model flags when the
// corresponding CLI flag was not explicitly set.
func applyModelConfig(c isSet, cfg Config) {
	if cfg.ModelsDir != "" && !c.IsSet("models-path") {
		modelsPath = cfg.ModelsDir
	}
	if cfg.Model != "" && !c.IsSet("model") {
		modelPath = cfg.Model
	}
	if cfg.MaxContext != nil && !c.IsSet("max-context") {
		maxContext = *cfg.MaxContext
	}
}

func applyProbeConfig(c isSet, cfg Config, topK *int64) {
	applyModelConfig(c, cfg)
	if cfg.TopK != nil && !c.IsSet("top-k") {
		*topK = *cfg.TopK
	}
}

func applyServeConfig(c isSet, cfg Config, addr *string) {
	applyModelConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
