package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings read from the YAML config file. Zero values are
// filled with defaults before unmarshalling, so a partial file is fine.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Chat    ChatConfig    `yaml:"chat"`
	Log     LogConfig     `yaml:"log"`
}

type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
}

type ChatConfig struct {
	CourseID string   `yaml:"course_id"`
	Timeout  Duration `yaml:"timeout"`
}

// Duration wraps time.Duration so the config file can spell timeouts like
// "45s" or "3m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000",
		},
		Chat: ChatConfig{
			Timeout: Duration(3 * time.Minute),
		},
		Log: LogConfig{
			File:  ".ateneo/ateneo.log",
			Level: "info",
		},
	}
}

// LoadConfig reads the YAML file at path over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
