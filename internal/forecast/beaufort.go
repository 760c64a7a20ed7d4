package forecast

import "math"

// beaufortLimits are the WMO upper bounds (m/s, exclusive) of classes 0..11.
// Anything at or above the last limit is class 12.
var beaufortLimits = [...]float64{0.3, 1.6, 3.4, 5.5, 8.0, 10.8, 13.9, 17.2, 20.8, 24.5, 28.5, 32.7}

// Beaufort classifies a wind speed in m/s on the 0-12 Beaufort scale.
func Beaufort(speed float64) int {
	if math.IsNaN(speed) {
		return 0
	}
	for class, limit := range beaufortLimits {
		if speed < limit {
			return class
		}
	}
	return len(beaufortLimits)
}
