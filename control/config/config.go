// Package config describes how the clock is wired to the board.  Only wiring lives here; the
// clock's timing is fixed at compile time.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the contents of the clock's YAML configuration file.
type Config struct {
	// Bind is the address of the debug and metrics HTTP server.
	Bind    string        `yaml:"bind"`
	Display DisplayConfig `yaml:"display"`
	Button  PinConfig     `yaml:"button"`
	LED     PinConfig     `yaml:"led"`
}

// DisplayConfig describes the MAX7219 chain.
type DisplayConfig struct {
	// SPI is the name of the SPI port; empty means the first one found.
	SPI string `yaml:"spi"`
	// PreviewOnly runs without display hardware, keeping only the preview image.
	PreviewOnly bool `yaml:"preview_only"`
	// Intensity is the MAX7219 brightness, 0-15.
	Intensity *uint8 `yaml:"intensity"`
}

// PinConfig names a GPIO pin.
type PinConfig struct {
	Pin string `yaml:"pin"`
}

const (
	DefaultBind      = ":8080"
	DefaultButtonPin = "GPIO17"
	DefaultLEDPin    = "GPIO27"
	DefaultIntensity = 1
	MaxIntensity     = 15
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}

// Normalize fills in defaults for unset fields.
func Normalize(cfg *Config) {
	if cfg.Bind == "" {
		cfg.Bind = DefaultBind
	}
	if cfg.Button.Pin == "" {
		cfg.Button.Pin = DefaultButtonPin
	}
	if cfg.LED.Pin == "" {
		cfg.LED.Pin = DefaultLEDPin
	}
	if cfg.Display.Intensity == nil {
		i := uint8(DefaultIntensity)
		cfg.Display.Intensity = &i
	}
}

// Validate checks configuration correctness.  It does not modify cfg.
func Validate(cfg *Config) error {
	if cfg.Display.Intensity != nil && *cfg.Display.Intensity > MaxIntensity {
		return fmt.Errorf("display: intensity %d out of range 0-%d", *cfg.Display.Intensity, MaxIntensity)
	}
	if cfg.Button.Pin != "" && cfg.Button.Pin == cfg.LED.Pin {
		return fmt.Errorf("button and led are both on pin %q", cfg.Button.Pin)
	}
	return nil
}

// Load reads, normalizes, and validates the configuration at path.  An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}
