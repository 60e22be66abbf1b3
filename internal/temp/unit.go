// Package temp converts raw sensor readings (millidegrees Celsius) into
// display units and describes the display range for each unit.
package temp

// Unit is a temperature display unit.
type Unit int

const (
	Celsius Unit = iota
	Fahrenheit
)

// Display ranges. Readings outside them still render, the bar just
// saturates or empties.
const (
	MinCelsius    = 0.0
	MaxCelsius    = 85.0
	MinFahrenheit = 32.0
	MaxFahrenheit = 185.0
)

// UnitFor returns Fahrenheit when fahrenheit is set, Celsius otherwise.
func UnitFor(fahrenheit bool) Unit {
	if fahrenheit {
		return Fahrenheit
	}
	return Celsius
}

// Convert turns a raw millidegree reading into degrees of u.
func (u Unit) Convert(raw int64) float64 {
	c := float64(raw) / 1000.0
	if u == Fahrenheit {
		return c*1.8 + 32
	}
	return c
}

// Range returns the (min, max) bounds of the display bar.
func (u Unit) Range() (float64, float64) {
	if u == Fahrenheit {
		return MinFahrenheit, MaxFahrenheit
	}
	return MinCelsius, MaxCelsius
}

// Letter returns "C" or "F".
func (u Unit) Letter() string {
	if u == Fahrenheit {
		return "F"
	}
	return "C"
}

// Symbol returns the unit with its degree sign, e.g. "°C".
func (u Unit) Symbol() string {
	return "°" + u.Letter()
}

func (u Unit) String() string {
	if u == Fahrenheit {
		return "fahrenheit"
	}
	return "celsius"
}
