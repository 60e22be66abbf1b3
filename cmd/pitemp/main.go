package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/luki/pitemp/internal/chart"
	"github.com/luki/pitemp/internal/config"
	"github.com/luki/pitemp/internal/history"
	"github.com/luki/pitemp/internal/monitor"
	"github.com/luki/pitemp/internal/mqtt"
	"github.com/luki/pitemp/internal/sensor"
	"github.com/luki/pitemp/internal/store"
	"github.com/luki/pitemp/internal/temp"
	"github.com/luki/pitemp/internal/tui"
)

// Version metadata populated at build time via -ldflags.
var (
	releaseVersion = "dev"
	commit         = "none"
)

const (
	unsupportedMsg    = "This system is not supported by PiTempMonitor"
	thresholdOrderMsg = "Expected cyan threshold to be less than yellow threshold"
	defaultMQTTTopic  = "pitemp/temperature"
)

type cliOptions struct {
	configPath string
	verbose    bool
	noColor    bool
	flags      config.Config
	mqtt       config.MQTTConfig
}

func newCLIOptions() *cliOptions {
	return &cliOptions{flags: config.Default()}
}

func newRootCmd(stdout io.Writer, opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pitemp",
		Short:         "A lightweight program for monitoring the CPU temperature of the Raspberry Pi.",
		Long:          "pitemp polls a thermal zone and keeps a single terminal line showing the temperature as a color-coded bar.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if opts.verbose {
				log.SetLevel(log.DebugLevel)
			}

			cfg, err := buildConfig(cmd, opts)
			if err != nil {
				return err
			}
			opts.noColor = cfg.NoColor
			return run(cmd.Context(), cfg, stdout)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} {{.Version}} (commit %s)\n", commit))

	f := cmd.Flags()
	f.BoolVarP(&opts.flags.Fahrenheit, "fahrenheit", "f", false, "Display temperature in Fahrenheit rather than the default Celsius")
	f.IntVarP(&opts.flags.Length, "length", "l", config.DefaultLength, "The length of the display bar")
	f.Float64VarP(&opts.flags.Interval, "interval", "i", config.DefaultInterval, "The frequency (in seconds) that the display is refreshed")
	f.StringVarP(&opts.flags.FilePath, "file-path", "p", sensor.DefaultPath, "The file from which temperature data is read")
	f.StringVar(&opts.flags.Zone, "zone", "", "Read this thermal zone through the sysfs driver instead of --file-path")
	f.Float64Var(&opts.flags.CyanThreshold, "cyan-threshold", chart.DefaultCyanThreshold, "Fraction of the bar drawn cyan (0 disables)")
	f.Float64Var(&opts.flags.YellowThreshold, "yellow-threshold", chart.DefaultYellowThreshold, "Fraction of the bar below which fill is yellow (0 disables)")
	f.StringVar(&opts.flags.RecordDir, "record-dir", "", "Append every reading to daily CSV files in this directory")
	f.BoolVar(&opts.flags.Stats, "stats", false, "Show session min/avg/peak after the reading")
	f.BoolVar(&opts.flags.NoColor, "no-color", false, "Draw the bar without color escapes")
	f.BoolVar(&opts.flags.TUI, "tui", false, "Run the full-screen monitor")
	f.StringVar(&opts.mqtt.Server, "mqtt-server", "", "Publish readings to this MQTT broker (tcp://host:port)")
	f.StringVar(&opts.mqtt.Topic, "mqtt-topic", "", "MQTT state topic (default \""+defaultMQTTTopic+"\")")
	f.StringVar(&opts.mqtt.ClientID, "mqtt-client-id", "", "MQTT client id (default pitemp-<random>)")
	f.StringVar(&opts.mqtt.Username, "mqtt-user", "", "MQTT username")
	f.StringVar(&opts.mqtt.Password, "mqtt-pass", "", "MQTT password")
	f.StringVar(&opts.mqtt.DiscoveryTopic, "mqtt-discovery-topic", "", "Publish a retained Home Assistant discovery document to this topic")
	f.StringVar(&opts.configPath, "config", "", "Path to a YAML config file; flags override its values")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging on stderr")

	return cmd
}

// buildConfig layers defaults, the optional config file and explicitly set
// flags, in that order, and validates the result.
func buildConfig(cmd *cobra.Command, opts *cliOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(opts.configPath); err != nil {
			return cfg, err
		}
	}

	f := cmd.Flags()
	fl := opts.flags
	if f.Changed("fahrenheit") {
		cfg.Fahrenheit = fl.Fahrenheit
	}
	if f.Changed("length") {
		cfg.Length = fl.Length
	}
	if f.Changed("interval") {
		cfg.Interval = fl.Interval
	}
	if f.Changed("file-path") {
		cfg.FilePath = fl.FilePath
	}
	if f.Changed("zone") {
		cfg.Zone = fl.Zone
	}
	if f.Changed("cyan-threshold") {
		cfg.CyanThreshold = fl.CyanThreshold
	}
	if f.Changed("yellow-threshold") {
		cfg.YellowThreshold = fl.YellowThreshold
	}
	if f.Changed("record-dir") {
		cfg.RecordDir = fl.RecordDir
	}
	if f.Changed("stats") {
		cfg.Stats = fl.Stats
	}
	if f.Changed("no-color") {
		cfg.NoColor = fl.NoColor
	}
	if f.Changed("tui") {
		cfg.TUI = fl.TUI
	}
	applyMQTTFlags(cmd, opts, &cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyMQTTFlags(cmd *cobra.Command, opts *cliOptions, cfg *config.Config) {
	m := cfg.MQTT
	if m == nil {
		m = &config.MQTTConfig{}
	}

	changed := false
	for _, fl := range []struct {
		name     string
		src, dst *string
	}{
		{"mqtt-server", &opts.mqtt.Server, &m.Server},
		{"mqtt-topic", &opts.mqtt.Topic, &m.Topic},
		{"mqtt-client-id", &opts.mqtt.ClientID, &m.ClientID},
		{"mqtt-user", &opts.mqtt.Username, &m.Username},
		{"mqtt-pass", &opts.mqtt.Password, &m.Password},
		{"mqtt-discovery-topic", &opts.mqtt.DiscoveryTopic, &m.DiscoveryTopic},
	} {
		if cmd.Flags().Changed(fl.name) {
			*fl.dst = *fl.src
			changed = true
		}
	}
	if cfg.MQTT == nil && !changed {
		return
	}

	if m.Topic == "" {
		m.Topic = defaultMQTTTopic
	}
	cfg.MQTT = m
}

func openSource(cfg config.Config) (sensor.Source, string, error) {
	if cfg.Zone != "" {
		z, err := sensor.OpenZone(cfg.Zone)
		if err != nil {
			return nil, "", err
		}
		return z, sensor.FriendlyName(cfg.Zone), nil
	}
	label := sensor.FriendlyName(sensor.ZoneType(cfg.FilePath))
	if label == "Sensor" {
		label = "CPU"
	}
	return sensor.FileSource{Path: cfg.FilePath}, label, nil
}

func run(ctx context.Context, cfg config.Config, stdout io.Writer) error {
	src, label, err := openSource(cfg)
	if err != nil {
		return err
	}
	sampler := monitor.NewSampler(src, cfg.Unit())

	var sinks []monitor.Sink
	if cfg.RecordDir != "" {
		rec, err := store.New(cfg.RecordDir)
		if err != nil {
			return err
		}
		defer rec.Close()
		sinks = append(sinks, rec)
	}
	if cfg.MQTT != nil {
		pub, err := mqtt.New(*cfg.MQTT, label, cfg.Unit())
		if err != nil {
			return err
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}

	if cfg.TUI {
		prev := log.StandardLogger().Out
		log.SetOutput(io.Discard)
		defer log.SetOutput(prev)

		return tui.Run(ctx, sampler, tui.Options{
			Label:      label,
			Length:     cfg.Length,
			Interval:   cfg.IntervalDuration(),
			Thresholds: cfg.Thresholds(),
			Sinks:      sinks,
			Seed:       recordedToday(cfg.RecordDir, src, cfg.Unit(), time.Now()),
		})
	}

	loop := monitor.New(sampler, stdout, chart.NewRenderer(stdout, !cfg.NoColor), monitor.Options{
		Length:     cfg.Length,
		Interval:   cfg.IntervalDuration(),
		Thresholds: cfg.Thresholds(),
		Stats:      cfg.Stats,
	}, sinks...)
	return loop.Run(ctx)
}

// recordedToday returns the readings already recorded today for src in
// unit, so a restarted TUI resumes its history.
func recordedToday(dir string, src sensor.Source, unit temp.Unit, now time.Time) []history.Point {
	if dir == "" {
		return nil
	}
	rows, err := store.LoadDay(dir, now)
	if err != nil {
		log.WithError(err).WithField("dir", dir).Warn("cannot load recorded readings")
		return nil
	}
	var pts []history.Point
	for _, r := range rows {
		if r.Source != src.String() || r.Unit != unit.Letter() {
			continue
		}
		pts = append(pts, history.Point{Value: r.Value, Time: r.Time})
	}
	return pts
}

// execute runs the CLI and maps its outcome to a process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	log.SetOutput(stderr)
	log.SetLevel(log.WarnLevel)

	opts := newCLIOptions()
	cmd := newRootCmd(stdout, opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, sensor.ErrUnsupported):
		log.WithError(err).Debug("sensor unavailable")
		fmt.Fprintln(stdout, chart.NewRenderer(stdout, !opts.noColor).Style(chart.Red).Render(unsupportedMsg))
	case errors.Is(err, chart.ErrThresholdOrder):
		fmt.Fprintln(stdout, thresholdOrderMsg)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
