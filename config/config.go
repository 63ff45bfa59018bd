package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Tuya  TuyaConfig  `yaml:"tuya"`
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`
}

type TuyaConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Region   string `yaml:"region"`
	BaseURL  string `yaml:"base_url"`
}

type StoreConfig struct {
	TokenFile   string `yaml:"token_file"`
	DevicesFile string `yaml:"devices_file"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Tuya.Region == "" {
		c.Tuya.Region = "us"
	}
	if c.Store.TokenFile == "" {
		c.Store.TokenFile = "access_token"
	}
	if c.Store.DevicesFile == "" {
		c.Store.DevicesFile = "devices.yaml"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
