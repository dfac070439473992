package model

// InitialInput is the single reading used to start an infusion.
type InitialInput struct {
	BG GlucoseReading
}

func (in InitialInput) Validate() error {
	return in.BG.Validate("bg")
}

// DoseResult is the start-up recommendation.
// Bolus and Rate usually carry the same number but are different
// quantities (U given once vs U/h continuous).
type DoseResult struct {
	Bolus   Units
	Rate    InfusionRate
	Divisor float64
}

// TitrationInput is one hourly adjustment request. The caller supplies the
// previous reading and rate every time; nothing is remembered between calls.
type TitrationInput struct {
	CurrentBG  GlucoseReading
	PreviousBG GlucoseReading
	LastRate   InfusionRate
}

func (in TitrationInput) Validate() error {
	if err := in.CurrentBG.Validate("current_bg"); err != nil {
		return err
	}
	if err := in.PreviousBG.Validate("previous_bg"); err != nil {
		return err
	}
	return in.LastRate.Validate("last_rate")
}

// Delta is previous minus current; positive means glucose is falling.
func (in TitrationInput) Delta() float64 {
	return float64(in.PreviousBG) - float64(in.CurrentBG)
}

// TitrationResult is the adjusted pump setting plus the values that explain it.
//
// Advisory is only set on the hypoglycemia path. Guidance carries the
// hold-band note. DextroseML is the 50% dextrose volume to give when
// hypoglycemic.
type TitrationResult struct {
	NewRate          InfusionRate
	Advisory         string
	NextCheckMinutes int

	Band       Band
	Delta      float64
	Multiplier float64
	Escalated  bool
	DextroseML float64
	Guidance   string
}

// Hypoglycemic reports whether the infusion must be stopped.
func (r TitrationResult) Hypoglycemic() bool {
	return r.Band == BandHypoglycemia
}
