// Package chart builds the threshold-colored temperature bar and the
// history sparkline shown in the full-screen monitor.
package chart

import (
	"errors"
	"math"
)

// Default threshold fractions of the bar.
const (
	DefaultCyanThreshold   = 0.5
	DefaultYellowThreshold = 0.725
)

// ErrThresholdOrder is returned when the cyan cut point is not below the
// yellow one.
var ErrThresholdOrder = errors.New("expected cyan threshold to be less than yellow threshold")

// Zone is the color class of one bar cell.
type Zone int

const (
	Off Zone = iota
	Cyan
	Yellow
	Red
)

func (z Zone) String() string {
	switch z {
	case Cyan:
		return "cyan"
	case Yellow:
		return "yellow"
	case Red:
		return "red"
	default:
		return "off"
	}
}

// Thresholds are fractions (0..1) of the bar at which the fill color
// changes. A zero threshold disables its zone.
type Thresholds struct {
	Cyan   float64
	Yellow float64
}

// DefaultThresholds returns the stock 0.5 / 0.725 cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{Cyan: DefaultCyanThreshold, Yellow: DefaultYellowThreshold}
}

// BuildBar lays out length cells for a fill of current/total. The filled
// cell count is rounded half away from zero while the threshold cutoffs are
// truncated. Always returns exactly length zones.
func BuildBar(current, total float64, length int, th Thresholds) ([]Zone, error) {
	if th.Cyan >= th.Yellow {
		return nil, ErrThresholdOrder
	}
	if length <= 0 {
		return nil, nil
	}

	n := float64(length)
	filled := fillCells(n*current/total, length)
	cyanLen := int(n * th.Cyan)
	yellowLen := int(n * th.Yellow)

	zones := make([]Zone, length)
	for i := range zones {
		switch {
		case i >= filled:
			zones[i] = Off
		case i < cyanLen && th.Cyan > 0:
			zones[i] = Cyan
		case i < yellowLen && th.Yellow > 0:
			zones[i] = Yellow
		default:
			zones[i] = Red
		}
	}
	return zones, nil
}

// fillCells rounds the fill to whole cells, clamped to [0, length] so that
// out-of-range or non-finite readings cannot overflow the conversion.
func fillCells(cells float64, length int) int {
	switch {
	case math.IsNaN(cells) || cells <= 0:
		return 0
	case cells >= float64(length):
		return length
	default:
		return int(math.Round(cells))
	}
}

// ZoneAt classifies a single value on the bar scale, using the same rules
// as the last filled cell of BuildBar would.
func ZoneAt(current, total float64, th Thresholds) Zone {
	if total <= 0 || current <= 0 {
		return Off
	}
	frac := current / total
	switch {
	case th.Cyan > 0 && frac <= th.Cyan:
		return Cyan
	case th.Yellow > 0 && frac <= th.Yellow:
		return Yellow
	default:
		return Red
	}
}
