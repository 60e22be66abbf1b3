// Package sensor reads raw temperature values from thermal pseudo-files.
// A raw value is an integer in millidegrees Celsius, the format the Linux
// thermal subsystem exposes under /sys/class/thermal.
package sensor

import (
	"time"

	"github.com/luki/pitemp/internal/temp"
)

// DefaultPath is the on-board thermal zone of a Raspberry Pi.
const DefaultPath = "/sys/class/thermal/thermal_zone0/temp"

// Source produces raw millidegree readings.
type Source interface {
	ReadRaw() (int64, error)
	String() string
}

// Reading is one converted sample.
type Reading struct {
	Source string    // e.g. "/sys/class/thermal/thermal_zone0/temp"
	Raw    int64     // millidegrees Celsius as read
	Value  float64   // Raw converted to Unit
	Unit   temp.Unit // display unit of Value
	Time   time.Time
}
