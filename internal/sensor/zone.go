package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/sysfs"
)

// ZoneSource reads a thermal zone by name through periph's sysfs driver,
// e.g. "cpu-thermal" or "thermal_zone0".
type ZoneSource struct {
	sensor *sysfs.ThermalSensor
}

// OpenZone initializes the periph host drivers and looks up the zone.
func OpenZone(name string) (*ZoneSource, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %w", ErrUnsupported, err)
	}
	s, err := sysfs.ThermalSensorByName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return &ZoneSource{sensor: s}, nil
}

// ReadRaw senses the zone and reports millidegrees Celsius.
func (z *ZoneSource) ReadRaw() (int64, error) {
	var env physic.Env
	if err := z.sensor.Sense(&env); err != nil {
		return 0, fmt.Errorf("%w: sense %s: %w", ErrUnsupported, z.sensor, err)
	}
	return int64((env.Temperature - physic.ZeroCelsius) / physic.MilliKelvin), nil
}

func (z *ZoneSource) String() string {
	return z.sensor.String()
}
