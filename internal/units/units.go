// Package units provides shared physical constants and conversions for
// wind and temperature quantities.
package units

import "math"

// Physical constants used by the flux and quality-control calculations.
const (
	// VonKarman is the von Karman constant.
	VonKarman = 0.4

	// Gravity is the gravitational acceleration in m/s^2.
	Gravity = 9.81

	// EarthRotationRate is the Earth's angular velocity in rad/s.
	EarthRotationRate = 7.2921e-5

	// CelsiusOffset converts degrees Celsius to Kelvin.
	CelsiusOffset = 273.15
)

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// CelsiusToKelvin converts a temperature from Celsius to Kelvin.
func CelsiusToKelvin(c float64) float64 {
	return c + CelsiusOffset
}

// Coriolis returns the Coriolis parameter for a site latitude in degrees.
func Coriolis(latitudeDeg float64) float64 {
	return 2 * EarthRotationRate * math.Sin(DegToRad(latitudeDeg))
}

// WindComponents converts a meteorological wind speed and direction
// (degrees, direction the wind blows from) into eastward and northward
// vector components of the wind itself.
func WindComponents(speed, directionDeg float64) (u, v float64) {
	rad := DegToRad(directionDeg)
	u = -speed * math.Sin(rad)
	v = -speed * math.Cos(rad)
	return u, v
}
