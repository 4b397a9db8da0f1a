package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.05
	DefaultDuration = 60.0
	DefaultSetpoint = 30.0
	DefaultKp       = 0.5
	DefaultTi       = 5.0
	DefaultTd       = 0.0
)

type Config struct {
	Plant      string       `yaml:"plant"`
	Integrator string       `yaml:"integrator"`
	Dt         float64      `yaml:"dt"`
	Duration   float64      `yaml:"duration"`
	Setpoint   float64      `yaml:"setpoint"`
	Gains      GainsConfig  `yaml:"gains"`
	Limits     LimitsConfig `yaml:"limits"`
}

type GainsConfig struct {
	Kp float64 `yaml:"kp"`
	Ti float64 `yaml:"ti"`
	Td float64 `yaml:"td"`
}

type LimitsConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Min          float64 `yaml:"min"`
	Max          float64 `yaml:"max"`
	Integral     bool    `yaml:"integral"`
	Conditioning bool    `yaml:"conditioning"`
}

func DefaultConfig() *Config {
	return &Config{
		Plant:      "thermal",
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Setpoint:   DefaultSetpoint,
		Gains: GainsConfig{
			Kp: DefaultKp,
			Ti: DefaultTi,
			Td: DefaultTd,
		},
	}
}

func Load(path string) (*Config, error) {
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

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
