// Package dosing implements the IV insulin start-up and hourly titration
// calculations. Every function is pure and safe for concurrent use.
package dosing

import (
	"fmt"
	"math"

	"insulin-infusion/internal/model"
)

// InitialDose returns the bolus and starting rate for a single reading.
func InitialDose(bg model.GlucoseReading) (model.DoseResult, error) {
	if err := bg.Validate("bg"); err != nil {
		return model.DoseResult{}, err
	}
	divisor := StandardDivisor
	if float64(bg) >= HighStartThreshold {
		divisor = HighStartDivisor
	}
	bolus := Round1(float64(bg) / divisor)
	return model.DoseResult{
		Bolus:   model.Units(bolus),
		Rate:    model.InfusionRate(bolus),
		Divisor: divisor,
	}, nil
}

// Titrate returns the new pump rate for an hourly check.
//
// Order of evaluation:
//   - bg < 70 stops the infusion and nothing else is considered
//   - the band multiplier is replaced by the rate-of-change multiplier,
//     then raised if bg >= 180 is not falling by more than 10
//
// In 70..110 the base multiplier is 0, so only a rise or a fast fall keeps
// the pump running, and the next check comes after 30 minutes.
func Titrate(in model.TitrationInput) (model.TitrationResult, error) {
	if err := in.Validate(); err != nil {
		return model.TitrationResult{}, err
	}

	bg := float64(in.CurrentBG)
	delta := in.Delta()
	band := model.BandFromGlucose(in.CurrentBG)
	res := model.TitrationResult{Band: band, Delta: delta}

	if band == model.BandHypoglycemia {
		res.Advisory = AdvisoryHypoglycemia
		res.NextCheckMinutes = HypoglycemiaRecheckMinutes
		res.DextroseML = Round1((DextroseTargetBG - bg) * DextroseMLPerMgDL)
		return res, nil
	}

	m := rateOfChangeMultiplier(baseMultiplier(band), delta)
	if bg >= EscalationThreshold && delta <= EscalationDelta {
		// divisor clamped to >= 1
		adaptive := float64(in.LastRate)/math.Max(bg-RateOffset, 1) + EscalationIncrement
		if adaptive > m {
			m = adaptive
			res.Escalated = true
		}
	}

	res.Multiplier = m
	res.NewRate = model.InfusionRate(Round1(math.Max((bg-RateOffset)*m, 0)))
	res.NextCheckMinutes = RoutineRecheckMinutes
	if band == model.BandHold {
		res.Guidance = GuidanceHold
		res.NextCheckMinutes = HoldRecheckMinutes
	}
	return res, nil
}

func rateOfChangeMultiplier(base, delta float64) float64 {
	switch {
	case delta >= FastFallDelta:
		return FastFallMultiplier
	case delta <= 0:
		return RisingMultiplier
	default:
		return base
	}
}

// Calculate validates a mode-tagged request and dispatches it.
func Calculate(req model.Request) (model.Outcome, error) {
	if err := req.Validate(); err != nil {
		return model.Outcome{}, err
	}
	switch req.Mode {
	case model.ModeInitial:
		d, err := InitialDose(req.Initial.BG)
		if err != nil {
			return model.Outcome{}, err
		}
		return model.Outcome{Mode: req.Mode, Dose: &d}, nil
	case model.ModeTitrate:
		t, err := Titrate(*req.Titration)
		if err != nil {
			return model.Outcome{}, err
		}
		return model.Outcome{Mode: req.Mode, Titration: &t}, nil
	default:
		return model.Outcome{}, fmt.Errorf("unsupported mode: %q", req.Mode)
	}
}
