// Package worksheet replays a caller-supplied series of hourly readings
// through the dosing engine. The first reading starts the infusion; each
// later one is titrated against its predecessor and the rate the previous
// row recommended.
package worksheet

import (
	"fmt"

	"insulin-infusion/internal/dosing"
	"insulin-infusion/internal/model"
)

// Run computes a worksheet row per reading.
func Run(readings []Reading) (*Result, error) {
	if len(readings) == 0 {
		return nil, model.MissingField("readings")
	}

	rows := make([]Row, 0, len(readings))
	res := &Result{}
	var rate model.InfusionRate

	for idx, r := range readings {
		if idx == 0 {
			d, err := dosing.InitialDose(r.BG)
			if err != nil {
				return nil, fmt.Errorf("reading %d: %w", idx, err)
			}
			rate = d.Rate
			rows = append(rows, Row{
				Index:            idx,
				Time:             r.Time,
				BG:               r.BG,
				Mode:             model.ModeInitial,
				Band:             model.BandFromGlucose(r.BG),
				Bolus:            d.Bolus,
				Rate:             d.Rate,
				NextCheckMinutes: dosing.RoutineRecheckMinutes,
			})
			continue
		}

		prev := readings[idx-1].BG
		t, err := dosing.Titrate(model.TitrationInput{
			CurrentBG:  r.BG,
			PreviousBG: prev,
			LastRate:   rate,
		})
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", idx, err)
		}
		if t.Hypoglycemic() {
			res.HypoglycemiaCount++
		}

		rows = append(rows, Row{
			Index:      idx,
			Time:       r.Time,
			BG:         r.BG,
			PreviousBG: prev,
			Delta:      t.Delta,

			Mode: model.ModeTitrate,
			Band: t.Band,

			LastRate:   rate,
			Rate:       t.NewRate,
			Multiplier: t.Multiplier,
			Escalated:  t.Escalated,

			Advisory:         t.Advisory,
			Guidance:         t.Guidance,
			DextroseML:       t.DextroseML,
			NextCheckMinutes: t.NextCheckMinutes,
		})
		rate = t.NewRate
	}

	res.Rows = rows
	res.FinalRate = rate
	return res, nil
}
