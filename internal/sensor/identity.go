package sensor

import (
	"os"
	"path/filepath"
	"strings"
)

// zoneIdentityMap maps thermal zone type prefixes to friendly component names.
var zoneIdentityMap = []struct {
	prefix string
	name   string
}{
	{"cpu-thermal", "CPU"},
	{"cpu_thermal", "CPU"},
	{"x86_pkg_temp", "CPU"},
	{"tcpu", "CPU"},
	{"b0d4", "CPU"},
	{"soc", "SoC"},
	{"gpu", "GPU"},
	{"ddr", "Memory"},
	{"acpitz", "ACPI Thermal"},
	{"pch", "PCH (Chipset)"},
	{"iwlwifi", "WiFi"},
	{"int3400", "Platform"},
	{"sen", "Board"},
	{"bat", "Battery"},
}

// FriendlyName returns a human-readable component name for a thermal zone type.
func FriendlyName(zoneType string) string {
	lower := strings.ToLower(strings.TrimSpace(zoneType))
	for _, entry := range zoneIdentityMap {
		if strings.HasPrefix(lower, entry.prefix) {
			return entry.name
		}
	}
	return "Sensor"
}

// ZoneType returns the content of the "type" file next to a thermal zone's
// temp file, or "" when there is none.
func ZoneType(tempPath string) string {
	b, err := os.ReadFile(filepath.Join(filepath.Dir(tempPath), "type"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
