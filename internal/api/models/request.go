package models

import (
	"insulin-infusion/internal/model"
)

// Readings are pointers so that an absent field is rejected instead of
// silently read as 0.

// InitialDoseRequest is the body of POST /api/v1/dose/initial
type InitialDoseRequest struct {
	BG *float64 `json:"bg" binding:"required"` // mg/dL
}

func (r InitialDoseRequest) ToModel() model.GlucoseReading {
	return model.GlucoseReading(*r.BG)
}

// TitrationRequest is the body of POST /api/v1/dose/titrate
type TitrationRequest struct {
	CurrentBG  *float64 `json:"current_bg" binding:"required"`  // mg/dL
	PreviousBG *float64 `json:"previous_bg" binding:"required"` // mg/dL, one hour earlier
	LastRate   *float64 `json:"last_rate" binding:"required"`   // U/h currently running
}

func (r TitrationRequest) ToModel() model.TitrationInput {
	return model.TitrationInput{
		CurrentBG:  model.GlucoseReading(*r.CurrentBG),
		PreviousBG: model.GlucoseReading(*r.PreviousBG),
		LastRate:   model.InfusionRate(*r.LastRate),
	}
}

// DoseRequest is a mode-tagged request, used by POST /api/v1/dose and the
// MQTT responder. Which fields are required depends on Mode.
type DoseRequest struct {
	Mode       string   `json:"mode" binding:"required"`
	BG         *float64 `json:"bg,omitempty"`
	CurrentBG  *float64 `json:"current_bg,omitempty"`
	PreviousBG *float64 `json:"previous_bg,omitempty"`
	LastRate   *float64 `json:"last_rate,omitempty"`
}

// ToModel checks that the fields for the selected mode are present.
func (r DoseRequest) ToModel() (model.Request, error) {
	mode, err := model.ParseMode(r.Mode)
	if err != nil {
		return model.Request{}, err
	}
	req := model.Request{Mode: mode}
	switch mode {
	case model.ModeInitial:
		if r.BG == nil {
			return model.Request{}, model.MissingField("bg")
		}
		req.Initial = &model.InitialInput{BG: model.GlucoseReading(*r.BG)}
	case model.ModeTitrate:
		switch {
		case r.CurrentBG == nil:
			return model.Request{}, model.MissingField("current_bg")
		case r.PreviousBG == nil:
			return model.Request{}, model.MissingField("previous_bg")
		case r.LastRate == nil:
			return model.Request{}, model.MissingField("last_rate")
		}
		req.Titration = &model.TitrationInput{
			CurrentBG:  model.GlucoseReading(*r.CurrentBG),
			PreviousBG: model.GlucoseReading(*r.PreviousBG),
			LastRate:   model.InfusionRate(*r.LastRate),
		}
	}
	return req, nil
}

// WorksheetRequest is the body of POST /api/v1/worksheet
type WorksheetRequest struct {
	Readings []WorksheetReading `json:"readings" binding:"required,min=1,dive"`
}

// WorksheetReading is one hourly check; Time is optional (RFC3339).
type WorksheetReading struct {
	Time string   `json:"time,omitempty"`
	BG   *float64 `json:"bg" binding:"required"`
}
