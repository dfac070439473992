package model

// Band names the glucose range a reading falls into.
// Keep these values stable; they are part of the JSON and CSV output.
type Band string

const (
	BandHypoglycemia Band = "HYPOGLYCEMIA" // bg < 70
	BandHold         Band = "HOLD"         // 70 <= bg <= 110
	BandLow          Band = "LOW"          // 110 < bg < 140
	BandTarget       Band = "TARGET"       // 140 <= bg < 180
	BandHigh         Band = "HIGH"         // 180 <= bg < 250
	BandVeryHigh     Band = "VERY_HIGH"    // bg >= 250
)

func BandFromGlucose(bg GlucoseReading) Band {
	switch {
	case bg < 70:
		return BandHypoglycemia
	case bg <= 110:
		return BandHold
	case bg < 140:
		return BandLow
	case bg < 180:
		return BandTarget
	case bg < 250:
		return BandHigh
	default:
		return BandVeryHigh
	}
}
