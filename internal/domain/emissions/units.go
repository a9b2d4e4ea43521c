package emissions

import "math"

// KgPerTonne is the ratio between the offset unit (tCO2e) and the base emission unit (kg CO2e).
const KgPerTonne = 1000.0

// TonnesToKg converts tonnes of CO2e to the base unit.
func TonnesToKg(t float64) float64 {
	return sanitize(t * KgPerTonne)
}

// KgToTonnes converts a base unit total to tonnes for presentation.
func KgToTonnes(kg float64) float64 {
	return sanitize(kg / KgPerTonne)
}

// sanitize maps NaN and infinities to 0 so no scalar ever leaks them into JSON.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
