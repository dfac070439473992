package worksheet

import (
	"time"

	"insulin-infusion/internal/model"
)

// Reading is one bedside glucose check.
type Reading struct {
	Time time.Time
	BG   model.GlucoseReading
}

// Row is one line of the worksheet: what the protocol recommended for a reading.
type Row struct {
	Index int
	Time  time.Time

	BG         model.GlucoseReading
	PreviousBG model.GlucoseReading
	Delta      float64

	Mode model.Mode
	Band model.Band

	Bolus      model.Units
	LastRate   model.InfusionRate
	Rate       model.InfusionRate
	Multiplier float64
	Escalated  bool

	Advisory         string
	Guidance         string
	DextroseML       float64
	NextCheckMinutes int
}

type Result struct {
	Rows []Row
	// FinalRate is the pump setting after the last reading.
	FinalRate model.InfusionRate
	// HypoglycemiaCount counts readings that stopped the infusion.
	HypoglycemiaCount int
}
