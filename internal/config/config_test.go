package config

import (
	"os"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luki/pitemp/internal/chart"
	"github.com/luki/pitemp/internal/temp"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.Fahrenheit)
	assert.Equal(t, 60, cfg.Length)
	assert.Equal(t, 1.0, cfg.Interval)
	assert.Equal(t, "/sys/class/thermal/thermal_zone0/temp", cfg.FilePath)
	assert.Equal(t, chart.DefaultThresholds(), cfg.Thresholds())
	assert.Equal(t, temp.Celsius, cfg.Unit())
	assert.Equal(t, time.Second, cfg.IntervalDuration())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"zero length", func(c *Config) { c.Length = 0 }, false},
		{"negative length", func(c *Config) { c.Length = -4 }, false},
		{"negative interval", func(c *Config) { c.Interval = -1 }, false},
		{"busy poll", func(c *Config) { c.Interval = 0 }, true},
		{"one year interval", func(c *Config) { c.Interval = MaxInterval }, true},
		{"interval past one year", func(c *Config) { c.Interval = 1e10 }, false},
		{"infinite interval", func(c *Config) { c.Interval = math.Inf(1) }, false},
		{"threshold above one", func(c *Config) { c.YellowThreshold = 1.5 }, false},
		{"misordered thresholds pass", func(c *Config) { c.CyanThreshold, c.YellowThreshold = 0.8, 0.2 }, true},
		{"no source", func(c *Config) { c.FilePath = "" }, false},
		{"zone only", func(c *Config) { c.FilePath, c.Zone = "", "cpu-thermal" }, true},
		{"mqtt ok", func(c *Config) { c.MQTT = &MQTTConfig{Server: "tcp://localhost:1883", Topic: "pitemp"} }, true},
		{"mqtt bad server", func(c *Config) { c.MQTT = &MQTTConfig{Server: "nope", Topic: "pitemp"} }, false},
		{"mqtt no topic", func(c *Config) { c.MQTT = &MQTTConfig{Server: "tcp://localhost:1883"} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestIntervalDurationNeverNegative(t *testing.T) {
	for _, secs := range []float64{0, -1, 1e10, math.Inf(1), math.NaN()} {
		cfg := Default()
		cfg.Interval = secs
		d := cfg.IntervalDuration()
		assert.GreaterOrEqual(t, d, time.Duration(0), "interval %v", secs)
		assert.LessOrEqual(t, d, time.Duration(MaxInterval)*time.Second, "interval %v", secs)
	}

	cfg := Default()
	cfg.Interval = 1e10
	assert.Equal(t, 365*24*time.Hour, cfg.IntervalDuration())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pitemp.yaml")
	doc := `fahrenheit: true
length: 40
interval: 0.5
mqtt:
  server: tcp://broker:1883
  topic: home/pi/temp
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Fahrenheit)
	assert.Equal(t, 40, cfg.Length)
	assert.Equal(t, 500*time.Millisecond, cfg.IntervalDuration())
	assert.Equal(t, "/sys/class/thermal/thermal_zone0/temp", cfg.FilePath)
	require.NotNil(t, cfg.MQTT)
	assert.Equal(t, "home/pi/temp", cfg.MQTT.Topic)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("length: [oops"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
