package lights

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Elgato lights store colour temperature in reciprocal megakelvin
// (1,000,000 / Kelvin) and accept brightness as a whole percentage.
const (
	MinBrightness = 3
	MaxBrightness = 100

	MinKelvin  = 2900
	MaxKelvin  = 7000
	KelvinStep = 50

	MinTemperature = 143 // 7000K
	MaxTemperature = 344 // 2900K

	kelvinFactor = 1_000_000
)

// TemperatureToKelvin converts a device temperature value to Kelvin, rounded
// to the nearest 50 to match the steps the device exposes.
func TemperatureToKelvin(temperature int) int {
	return KelvinStep * int(math.Round(float64(kelvinFactor)/float64(temperature)/KelvinStep))
}

// KelvinToTemperature converts Kelvin to the device temperature value.
func KelvinToTemperature(kelvin int) int {
	return int(math.Round(float64(kelvinFactor) / float64(kelvin)))
}

// ParseOnOff reads a power argument: "on" or "1" is true, "off" or "0" is
// false, case-insensitively.
func ParseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1":
		return true, nil
	case "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid on/off value: %q", s)
}

// ParseBrightness reads a brightness argument such as "50" or "50%".
func ParseBrightness(s string) (int, error) {
	trimmed := strings.TrimSuffix(s, "%")
	b, err := strconv.Atoi(trimmed)
	if err != nil || b < MinBrightness || b > MaxBrightness {
		return 0, fmt.Errorf("invalid brightness value: %q (valid is whole number 3-100)", s)
	}
	return b, nil
}

// ParseKelvin reads a colour-temperature argument such as "3400" or "3400k",
// in the 2900-7000 range the device supports, in increments of 50.
func ParseKelvin(s string) (int, error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(s, "k"), "K")
	k, err := strconv.Atoi(trimmed)
	if err != nil || k < MinKelvin || k > MaxKelvin || k%KelvinStep != 0 {
		return 0, fmt.Errorf("invalid temperature value: %q (valid is 2900-7000k in increments of 50)", s)
	}
	return k, nil
}
