package tuya

import "math"

// vendorPercent maps a 0-255 brightness level onto the 0-100 percentage
// the service expects, rounding to the nearest whole percent.
func vendorPercent(level uint8) int {
	return int(math.Round(float64(level) * 100 / 255))
}

// vendorColorTemp maps a color temperature in Kelvin onto the service's
// 1000-10000 scale: 2700K becomes 1000 and 6500K becomes 10000, with
// anything above 6500K clamped to the top of the range. Inputs below
// 2700K are not clamped and land below 1000 on the same line.
func vendorColorTemp(kelvin int) int {
	if kelvin > 6500 {
		kelvin = 6500
	}
	return 1000 + (kelvin-2700)*9000/3800
}
