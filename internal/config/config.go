package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-lpd8806/lpd8806"
)

const (
	DefaultMaxLEDs = 4096
	MaxFPS         = 1000
)

type SPI struct {
	Port    string `yaml:"port"`     // "" picks the first port, e.g. /dev/spidev0.0
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2000000
}

type Render struct {
	Name   string  `yaml:"name"`   // "solid" | "grad"
	Preset string  `yaml:"preset"` // renderer preset, optional
	Color  string  `yaml:"color"`  // hex color for solid, e.g. "#ff0000"
	Speed  float64 `yaml:"speed"`  // animation speed for grad
}

type Preview struct {
	Addr string `yaml:"addr"` // HTTP listen address, "" disables the preview server
}

type Config struct {
	NumLEDs  int    `yaml:"num_leds"`
	MaxLEDs  int    `yaml:"max_leds"` // upper bound for num_leds and runtime resizes
	FPS      int    `yaml:"fps"`
	LogLevel string `yaml:"log_level"`
	SimOnly  bool   `yaml:"sim_only"`

	SPI     SPI     `yaml:"spi"`
	Render  Render  `yaml:"render"`
	Preview Preview `yaml:"preview,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		NumLEDs:  32,
		MaxLEDs:  DefaultMaxLEDs,
		FPS:      30,
		LogLevel: "info",
		SPI:      SPI{SpeedHz: 2000000},
		Render:   Render{Name: "grad", Preset: "Rainbow"},
		Preview:  Preview{Addr: ":8080"},
	}
}

// Load reads path on top of Default.
func Load(path string) (*Config, error) {
	c := Default()
	if err := LoadInto(path, c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadInto reads path on top of c. Only the keys present in the file change c.
func LoadInto(path string, c *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	if c.NumLEDs < 0 {
		return fmt.Errorf("num_leds %d can't be < 0", c.NumLEDs)
	}
	if c.MaxLEDs <= 0 || c.MaxLEDs > lpd8806.MaxLEDs {
		return fmt.Errorf("max_leds %d out of range [1, %d]", c.MaxLEDs, lpd8806.MaxLEDs)
	}
	if c.NumLEDs > c.MaxLEDs {
		return fmt.Errorf("num_leds %d exceeds max_leds %d", c.NumLEDs, c.MaxLEDs)
	}
	if c.FPS <= 0 || c.FPS > MaxFPS {
		return fmt.Errorf("fps %d out of range [1, %d]", c.FPS, MaxFPS)
	}
	if c.SPI.SpeedHz < 0 {
		return fmt.Errorf("spi.speed_hz %d can't be < 0", c.SPI.SpeedHz)
	}
	return nil
}
