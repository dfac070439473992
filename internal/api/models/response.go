package models

import (
	"insulin-infusion/internal/dosing"
	"insulin-infusion/internal/model"
)

// DoseResponse is the start-up recommendation.
type DoseResponse struct {
	Mode             string  `json:"mode"`
	BolusUnits       float64 `json:"bolus_units"`
	RateUnitsPerHour float64 `json:"rate_units_per_hour"`
	Divisor          float64 `json:"divisor"`
	Summary          string  `json:"summary"`
}

func NewDoseResponse(d model.DoseResult) DoseResponse {
	return DoseResponse{
		Mode:             string(model.ModeInitial),
		BolusUnits:       float64(d.Bolus),
		RateUnitsPerHour: float64(d.Rate),
		Divisor:          d.Divisor,
		Summary:          dosing.DescribeDose(d),
	}
}

// TitrationResponse is the hourly recommendation.
type TitrationResponse struct {
	Mode                string  `json:"mode"`
	NewRateUnitsPerHour float64 `json:"new_rate_units_per_hour"`
	Advisory            string  `json:"advisory,omitempty"`
	NextCheckMinutes    int     `json:"next_check_minutes,omitempty"`
	Band                string  `json:"band"`
	Delta               float64 `json:"delta"`
	Multiplier          float64 `json:"multiplier"`
	Escalated           bool    `json:"escalated"`
	DextroseML          float64 `json:"dextrose_ml,omitempty"` // 50% dextrose
	Guidance            string  `json:"guidance,omitempty"`
	Summary             string  `json:"summary"`
}

func NewTitrationResponse(r model.TitrationResult) TitrationResponse {
	return TitrationResponse{
		Mode:                string(model.ModeTitrate),
		NewRateUnitsPerHour: float64(r.NewRate),
		Advisory:            r.Advisory,
		NextCheckMinutes:    r.NextCheckMinutes,
		Band:                string(r.Band),
		Delta:               r.Delta,
		Multiplier:          r.Multiplier,
		Escalated:           r.Escalated,
		DextroseML:          r.DextroseML,
		Guidance:            r.Guidance,
		Summary:             dosing.DescribeTitration(r),
	}
}

// NewOutcomeResponse returns a DoseResponse or TitrationResponse.
func NewOutcomeResponse(o model.Outcome) interface{} {
	if o.Dose != nil {
		return NewDoseResponse(*o.Dose)
	}
	if o.Titration != nil {
		return NewTitrationResponse(*o.Titration)
	}
	return nil
}

// WorksheetResponse carries one row per submitted reading.
type WorksheetResponse struct {
	Rows                  []WorksheetRow `json:"rows"`
	FinalRateUnitsPerHour float64        `json:"final_rate_units_per_hour"`
	HypoglycemiaCount     int            `json:"hypoglycemia_count"`
}

// WorksheetRow represents one reading in the worksheet
type WorksheetRow struct {
	Index            int     `json:"index"`
	Time             string  `json:"time,omitempty"`
	BG               float64 `json:"bg"`
	PreviousBG       float64 `json:"previous_bg,omitempty"`
	Delta            float64 `json:"delta"`
	Mode             string  `json:"mode"`
	Band             string  `json:"band"`
	BolusUnits       float64 `json:"bolus_units,omitempty"`
	LastRate         float64 `json:"last_rate_units_per_hour"`
	RateUnitsPerHour float64 `json:"rate_units_per_hour"`
	Multiplier       float64 `json:"multiplier,omitempty"`
	Escalated        bool    `json:"escalated,omitempty"`
	Advisory         string  `json:"advisory,omitempty"`
	Guidance         string  `json:"guidance,omitempty"`
	DextroseML       float64 `json:"dextrose_ml,omitempty"`
	NextCheckMinutes int     `json:"next_check_minutes"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
