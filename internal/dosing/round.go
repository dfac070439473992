package dosing

import "github.com/shopspring/decimal"

// Round1 rounds to one decimal place, half away from zero, on the shortest
// decimal representation of x (so 2.25 becomes 2.3).
func Round1(x float64) float64 {
	return decimal.NewFromFloat(x).Round(1).InexactFloat64()
}

// Fixed1 formats x with exactly one decimal, the way pumps display it.
func Fixed1(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(1)
}
