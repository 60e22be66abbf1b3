package monitor

import (
	"time"

	"github.com/luki/pitemp/internal/sensor"
	"github.com/luki/pitemp/internal/temp"
)

// Sampler reads a source and converts the raw value to a display unit.
type Sampler struct {
	Source sensor.Source
	Unit   temp.Unit
	Now    func() time.Time
}

// NewSampler returns a sampler stamping readings with the wall clock.
func NewSampler(src sensor.Source, unit temp.Unit) *Sampler {
	return &Sampler{Source: src, Unit: unit, Now: time.Now}
}

// Sample performs one read. Source errors are returned unchanged so that
// callers can test for sensor.ErrUnsupported.
func (s *Sampler) Sample() (sensor.Reading, error) {
	raw, err := s.Source.ReadRaw()
	if err != nil {
		return sensor.Reading{}, err
	}
	return sensor.Reading{
		Source: s.Source.String(),
		Raw:    raw,
		Value:  s.Unit.Convert(raw),
		Unit:   s.Unit,
		Time:   s.Now(),
	}, nil
}
