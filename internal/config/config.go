// Package config holds the runtime configuration. It is built once at
// startup from defaults, an optional YAML file and command-line flags, and
// is read-only afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/luki/pitemp/internal/chart"
	"github.com/luki/pitemp/internal/sensor"
	"github.com/luki/pitemp/internal/temp"
	"github.com/luki/pitemp/internal/validate"
)

// Defaults.
const (
	DefaultLength   = 60
	DefaultInterval = 1.0
)

// MaxInterval is the longest accepted refresh interval in seconds (one
// year). Longer values would overflow a time.Duration.
const MaxInterval = 365 * 24 * 60 * 60

// MQTTConfig configures the optional MQTT publisher.
type MQTTConfig struct {
	Server         string `yaml:"server" validate:"required,url"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	ClientID       string `yaml:"client_id"`
	Topic          string `yaml:"topic" validate:"required"`
	DiscoveryTopic string `yaml:"discovery_topic"`
}

// Config is the validated program configuration.
type Config struct {
	Fahrenheit      bool        `yaml:"fahrenheit"`
	Length          int         `yaml:"length" validate:"gt=0"`
	Interval        float64     `yaml:"interval" validate:"gte=0,lte=31536000"`
	FilePath        string      `yaml:"file_path" validate:"required_without=Zone"`
	Zone            string      `yaml:"zone"`
	CyanThreshold   float64     `yaml:"cyan_threshold" validate:"gte=0,lte=1"`
	YellowThreshold float64     `yaml:"yellow_threshold" validate:"gte=0,lte=1"`
	RecordDir       string      `yaml:"record_dir"`
	Stats           bool        `yaml:"stats"`
	NoColor         bool        `yaml:"no_color"`
	TUI             bool        `yaml:"tui"`
	MQTT            *MQTTConfig `yaml:"mqtt"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Length:          DefaultLength,
		Interval:        DefaultInterval,
		FilePath:        sensor.DefaultPath,
		CyanThreshold:   chart.DefaultCyanThreshold,
		YellowThreshold: chart.DefaultYellowThreshold,
	}
}

// LoadFile reads a YAML document over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints. Threshold ordering is left to bar
// construction.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unit returns the display unit.
func (c Config) Unit() temp.Unit {
	return temp.UnitFor(c.Fahrenheit)
}

// Thresholds returns the bar color cut points.
func (c Config) Thresholds() chart.Thresholds {
	return chart.Thresholds{Cyan: c.CyanThreshold, Yellow: c.YellowThreshold}
}

// IntervalDuration converts the interval in seconds to a time.Duration,
// clamped to [0, MaxInterval].
func (c Config) IntervalDuration() time.Duration {
	secs := c.Interval
	switch {
	case !(secs > 0):
		return 0
	case secs > MaxInterval:
		secs = MaxInterval
	}
	return time.Duration(secs * float64(time.Second))
}
