package dosing

import "insulin-infusion/internal/model"

// Canonical protocol constants. Glucose in mg/dL, rates in U/h.
const (
	HypoglycemiaThreshold = 70.0
	HoldCeiling           = 110.0
	EscalationThreshold   = 180.0

	// Start-up: BG/70 at or above HighStartThreshold, BG/100 below it.
	HighStartThreshold = 300.0
	HighStartDivisor   = 70.0
	StandardDivisor    = 100.0

	// Hourly rate is (BG - RateOffset) * multiplier.
	RateOffset = 60.0

	FastFallDelta       = 40.0
	EscalationDelta     = 10.0
	FastFallMultiplier  = 0.014
	RisingMultiplier    = 0.03
	EscalationIncrement = 0.01

	// Hypoglycemia: give (DextroseTargetBG - BG) * DextroseMLPerMgDL mL of D50.
	DextroseTargetBG  = 100.0
	DextroseMLPerMgDL = 0.3

	HypoglycemiaRecheckMinutes = 15
	HoldRecheckMinutes         = 30
	RoutineRecheckMinutes      = 60
)

const (
	AdvisoryHypoglycemia = "stop infusion, treat hypoglycemia"
	GuidanceHold         = "consider 5 mL IV 50% dextrose if elderly or high risk"
)

// BandRule is one row of the titration table.
type BandRule struct {
	Band           model.Band `json:"band" yaml:"band"`
	Range          string     `json:"range" yaml:"range"`
	BaseMultiplier float64    `json:"base_multiplier" yaml:"base_multiplier"`
	Note           string     `json:"note,omitempty" yaml:"note,omitempty"`
}

// Bands is the canonical table, ordered by ascending glucose.
var Bands = []BandRule{
	{Band: model.BandHypoglycemia, Range: "bg < 70", BaseMultiplier: 0, Note: "stop infusion, give D50, recheck in 15 min"},
	{Band: model.BandHold, Range: "70 <= bg <= 110", BaseMultiplier: 0, Note: "base 0: runs only when rising or falling fast; recheck in 30 min; consider dextrose if high risk"},
	{Band: model.BandLow, Range: "110 < bg < 140", BaseMultiplier: 0.02},
	{Band: model.BandTarget, Range: "140 <= bg < 180", BaseMultiplier: 0.02},
	{Band: model.BandHigh, Range: "180 <= bg < 250", BaseMultiplier: 0.02, Note: "raised if not falling"},
	{Band: model.BandVeryHigh, Range: "bg >= 250", BaseMultiplier: 0.03},
}

func baseMultiplier(b model.Band) float64 {
	for _, r := range Bands {
		if r.Band == b {
			return r.BaseMultiplier
		}
	}
	return 0
}

// Protocol is the human-readable reference served to clients.
type Protocol struct {
	Name        string     `json:"name" yaml:"name"`
	TargetRange string     `json:"target_range" yaml:"target_range"`
	StartUp     []string   `json:"start_up" yaml:"start_up"`
	Hourly      []string   `json:"hourly" yaml:"hourly"`
	Bands       []BandRule `json:"bands" yaml:"bands"`
}

// Reference describes the protocol the engine implements.
func Reference() Protocol {
	bands := make([]BandRule, len(Bands))
	copy(bands, Bands)
	return Protocol{
		Name:        "Glucommander / Yale IV insulin infusion",
		TargetRange: "100-140 mg/dL",
		StartUp: []string{
			"bg >= 300: bolus = bg/70 U, infusion = bg/70 U/h",
			"bg < 300: bolus = bg/100 U, infusion = bg/100 U/h",
			"both rounded to 0.1",
		},
		Hourly: []string{
			"rate = (bg - 60) * multiplier, rounded to 0.1 U/h",
			"delta = previous_bg - current_bg (positive = falling)",
			"delta >= 40: multiplier 0.014",
			"delta <= 0: multiplier 0.03",
			"0 < delta < 40: band base multiplier",
			"bg >= 180 and delta <= 10: multiplier = max(multiplier, last_rate/(bg-60) + 0.01)",
			"70 <= bg <= 110: base multiplier 0, recheck in 30 min",
			"bg < 70: stop infusion, give (100 - bg) * 0.3 mL IV 50% dextrose, recheck in 15 min",
		},
		Bands: bands,
	}
}
