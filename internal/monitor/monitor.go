// Package monitor runs the sample, render, wait loop that keeps a single
// terminal line showing the current temperature as a colored bar.
package monitor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/luki/pitemp/internal/chart"
	"github.com/luki/pitemp/internal/history"
	"github.com/luki/pitemp/internal/sensor"
)

// historySize is how many readings feed the session statistics.
const historySize = 600

// Sink receives every reading after it has been rendered.
type Sink interface {
	Record(sensor.Reading) error
}

// Options control rendering and pacing.
type Options struct {
	Length     int
	Interval   time.Duration
	Thresholds chart.Thresholds
	Stats      bool
}

// Loop is the sampling loop. It is not safe for concurrent use.
type Loop struct {
	sampler  *Sampler
	out      *bufio.Writer
	renderer *chart.Renderer
	opts     Options
	history  *history.Buffer
	sinks    []Sink
	log      *log.Entry
}

// New builds a loop writing to out.
func New(sampler *Sampler, out io.Writer, renderer *chart.Renderer, opts Options, sinks ...Sink) *Loop {
	return &Loop{
		sampler:  sampler,
		out:      bufio.NewWriter(out),
		renderer: renderer,
		opts:     opts,
		history:  history.NewBuffer(historySize),
		sinks:    sinks,
		log:      log.WithField("package", "monitor"),
	}
}

// Run samples and renders until ctx is cancelled, returning nil, or until a
// read or threshold error, which is returned as is. Each iteration finishes
// rendering before the next read starts.
func (l *Loop) Run(ctx context.Context) error {
	l.log.WithFields(log.Fields{
		"source":   l.sampler.Source.String(),
		"unit":     l.sampler.Unit,
		"interval": l.opts.Interval,
	}).Debug("starting monitor loop")

	for {
		if err := l.Step(); err != nil {
			return err
		}

		timer := time.NewTimer(l.opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.log.Debug("monitor loop stopped")
			return l.finish()
		case <-timer.C:
		}
	}
}

// Step performs one sample and render.
func (l *Loop) Step() error {
	r, err := l.sampler.Sample()
	if err != nil {
		return err
	}
	l.history.Push(r.Value, r.Time)

	line, err := l.Line(r)
	if err != nil {
		return err
	}
	if _, err := l.out.WriteString(line); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := l.out.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	l.log.WithFields(log.Fields{"raw": r.Raw, "value": r.Value}).Debug("sample")

	for _, s := range l.sinks {
		if err := s.Record(r); err != nil {
			l.log.WithError(err).Warn("sink failed")
		}
	}
	return nil
}

// Line formats the status line for r. It ends in a carriage return so the
// next line overwrites it.
func (l *Loop) Line(r sensor.Reading) (string, error) {
	lo, hi := r.Unit.Range()
	zones, err := chart.BuildBar(r.Value-lo, hi-lo, l.opts.Length, l.opts.Thresholds)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "|%s| CPU temperature: %.1f%s", l.renderer.Bar(zones), r.Value, r.Unit.Symbol())
	if l.opts.Stats {
		st := l.history.Stats()
		fmt.Fprintf(&sb, " (min %.1f avg %.1f peak %.1f)", st.Min, st.Avg, st.Peak)
	}
	sb.WriteString(" \r")
	return sb.String(), nil
}

// History exposes the session readings.
func (l *Loop) History() *history.Buffer {
	return l.history
}

func (l *Loop) finish() error {
	if _, err := l.out.WriteString("\n"); err != nil {
		return err
	}
	return l.out.Flush()
}
