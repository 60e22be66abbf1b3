package monitor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luki/pitemp/internal/chart"
	"github.com/luki/pitemp/internal/sensor"
	"github.com/luki/pitemp/internal/temp"
)

type fakeSource struct {
	values []int64
	reads  int
	err    error
	onRead func()
}

func (f *fakeSource) ReadRaw() (int64, error) {
	f.reads++
	if f.onRead != nil {
		f.onRead()
	}
	if f.err != nil {
		return 0, f.err
	}
	v := f.values[(f.reads-1)%len(f.values)]
	return v, nil
}

func (f *fakeSource) String() string { return "fake" }

type sinkFunc func(sensor.Reading) error

func (s sinkFunc) Record(r sensor.Reading) error { return s(r) }

func plainLoop(src sensor.Source, unit temp.Unit, out *bytes.Buffer, opts Options, sinks ...Sink) *Loop {
	fixed := time.Date(2026, 2, 21, 14, 0, 0, 0, time.Local)
	s := NewSampler(src, unit)
	s.Now = func() time.Time { return fixed }
	return New(s, out, chart.NewRenderer(out, false), opts, sinks...)
}

func defaultOptions() Options {
	return Options{Length: 60, Interval: time.Hour, Thresholds: chart.DefaultThresholds()}
}

func TestStepFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "temp")
	require.NoError(t, os.WriteFile(path, []byte("52300\n"), 0o644))

	var out bytes.Buffer
	l := plainLoop(sensor.FileSource{Path: path}, temp.Celsius, &out, defaultOptions())
	require.NoError(t, l.Step())

	want := "|" + strings.Repeat("█", 37) + strings.Repeat("░", 23) + "| CPU temperature: 52.3°C \r"
	assert.Equal(t, want, out.String())
	assert.NotContains(t, out.String(), "\n")
}

func TestStepFahrenheit(t *testing.T) {
	var out bytes.Buffer
	l := plainLoop(&fakeSource{values: []int64{45000}}, temp.Fahrenheit, &out, defaultOptions())
	require.NoError(t, l.Step())
	assert.Contains(t, out.String(), "CPU temperature: 113.0°F \r")
}

func TestLineBarZones(t *testing.T) {
	var out bytes.Buffer
	l := New(NewSampler(&fakeSource{values: []int64{42500}}, temp.Celsius), &out,
		chart.NewRenderer(&out, true), defaultOptions())
	require.NoError(t, l.Step())

	// 42.5 of 85 fills 30 cells, all cyan.
	line := out.String()
	assert.Equal(t, 30, strings.Count(line, "\x1b[36m"))
	assert.Equal(t, 30, strings.Count(line, "\x1b[30m"))
	assert.NotContains(t, line, "\x1b[33m")
}

func TestStepStats(t *testing.T) {
	var out bytes.Buffer
	opts := defaultOptions()
	opts.Stats = true
	l := plainLoop(&fakeSource{values: []int64{40000, 50000, 45000}}, temp.Celsius, &out, opts)
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Step())
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\r"), "\r")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "45.0°C (min 40.0 avg 45.0 peak 50.0)")
	assert.Equal(t, 3, l.History().Len())
}

func TestStepMissingFile(t *testing.T) {
	var out bytes.Buffer
	l := plainLoop(sensor.FileSource{Path: filepath.Join(t.TempDir(), "missing")}, temp.Celsius, &out, defaultOptions())

	err := l.Run(context.Background())
	assert.ErrorIs(t, err, sensor.ErrUnsupported)
	assert.Empty(t, out.String())
}

func TestRunStopsOnFirstReadError(t *testing.T) {
	src := &fakeSource{err: sensor.ErrUnsupported}
	var out bytes.Buffer
	opts := defaultOptions()
	opts.Interval = 0
	err := plainLoop(src, temp.Celsius, &out, opts).Run(context.Background())

	assert.ErrorIs(t, err, sensor.ErrUnsupported)
	assert.Equal(t, 1, src.reads)
}

func TestRunThresholdOrder(t *testing.T) {
	var out bytes.Buffer
	opts := defaultOptions()
	opts.Thresholds = chart.Thresholds{Cyan: 0.8, Yellow: 0.5}
	err := plainLoop(&fakeSource{values: []int64{40000}}, temp.Celsius, &out, opts).Run(context.Background())

	assert.ErrorIs(t, err, chart.ErrThresholdOrder)
	assert.Empty(t, out.String())
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{values: []int64{40000}}
	src.onRead = cancel

	var out bytes.Buffer
	err := plainLoop(src, temp.Celsius, &out, defaultOptions()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.reads)
	assert.True(t, strings.HasSuffix(out.String(), " \r\n"), "%q", out.String())
}

func TestRunSinks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeSource{values: []int64{40000, 41000, 42000}}
	src.onRead = func() {
		if src.reads >= 3 {
			cancel()
		}
	}

	var got []int64
	good := sinkFunc(func(r sensor.Reading) error {
		got = append(got, r.Raw)
		return nil
	})
	bad := sinkFunc(func(sensor.Reading) error { return errors.New("broker down") })

	var out bytes.Buffer
	opts := defaultOptions()
	opts.Interval = time.Millisecond
	require.NoError(t, plainLoop(src, temp.Celsius, &out, opts, bad, good).Run(ctx))

	require.GreaterOrEqual(t, len(got), 3)
	assert.Equal(t, []int64{40000, 41000, 42000}, got[:3])
}

func TestSamplerReading(t *testing.T) {
	s := NewSampler(&fakeSource{values: []int64{45000}}, temp.Fahrenheit)
	r, err := s.Sample()
	require.NoError(t, err)
	assert.Equal(t, "fake", r.Source)
	assert.Equal(t, int64(45000), r.Raw)
	assert.InDelta(t, 113.0, r.Value, 1e-9)
	assert.Equal(t, temp.Fahrenheit, r.Unit)
	assert.False(t, r.Time.IsZero())
}
