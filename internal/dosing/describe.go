package dosing

import (
	"fmt"
	"strings"

	"insulin-infusion/internal/model"
)

// DescribeDose renders a start-up recommendation.
func DescribeDose(d model.DoseResult) string {
	return fmt.Sprintf("bolus %s U, start infusion at %s U/h", Fixed1(float64(d.Bolus)), Fixed1(float64(d.Rate)))
}

// DescribeTitration renders an hourly recommendation with any advisory and
// the recheck interval.
func DescribeTitration(r model.TitrationResult) string {
	parts := []string{fmt.Sprintf("set pump to %s U/h", Fixed1(float64(r.NewRate)))}
	if r.Advisory != "" {
		a := r.Advisory
		if r.DextroseML > 0 {
			a += fmt.Sprintf(": give %s mL IV 50%% dextrose", Fixed1(r.DextroseML))
		}
		parts = append(parts, a)
	}
	if r.Guidance != "" {
		parts = append(parts, r.Guidance)
	}
	if r.NextCheckMinutes > 0 {
		parts = append(parts, fmt.Sprintf("recheck in %d min", r.NextCheckMinutes))
	}
	return strings.Join(parts, "; ")
}

// Describe renders whichever result an Outcome carries.
func Describe(o model.Outcome) string {
	switch {
	case o.Dose != nil:
		return DescribeDose(*o.Dose)
	case o.Titration != nil:
		return DescribeTitration(*o.Titration)
	default:
		return ""
	}
}
