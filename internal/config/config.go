package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Addr            string `yaml:"addr"`
	DatabaseURL     string `yaml:"database_url"`
	DisplayTimezone string `yaml:"display_timezone"`
	SessionHours    int    `yaml:"session_hours"`
}

// Defaults returns the configuration used when no config file is present.
func Defaults() *Config {
	return &Config{
		Addr:            ":8080",
		DisplayTimezone: "Asia/Shanghai",
		SessionHours:    168,
	}
}

func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Defaults()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	// The DATABASE_URL environment variable always wins, so the same
	// config file works across deployments.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.DatabaseURL = dbURL
	}

	return config, nil
}
