package dosing

import (
	"errors"
	"math"
	"testing"

	"insulin-infusion/internal/model"
)

func TestInitialDose(t *testing.T) {
	tests := []struct {
		name        string
		bg          float64
		wantBolus   float64
		wantDivisor float64
	}{
		{"256 uses divisor 100", 256, 2.6, 100},
		{"310 uses divisor 70", 310, 4.4, 70},
		{"300 is the first high reading", 300, 4.3, 70},
		{"299 stays on divisor 100", 299, 3.0, 100},
		{"zero", 0, 0, 100},
		{"100", 100, 1.0, 100},
		{"600", 600, 8.6, 70},
		{"tie 1.25 rounds away from zero", 125, 1.3, 100},
		{"tie 2.25 rounds away from zero", 225, 2.3, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InitialDose(model.GlucoseReading(tt.bg))
			if err != nil {
				t.Fatalf("InitialDose(%v) error: %v", tt.bg, err)
			}
			if float64(got.Bolus) != tt.wantBolus {
				t.Errorf("Bolus = %v, want %v", got.Bolus, tt.wantBolus)
			}
			if float64(got.Rate) != tt.wantBolus {
				t.Errorf("Rate = %v, want %v", got.Rate, tt.wantBolus)
			}
			if got.Divisor != tt.wantDivisor {
				t.Errorf("Divisor = %v, want %v", got.Divisor, tt.wantDivisor)
			}
		})
	}
}

func TestInitialDose_MatchesFormulaAcrossRange(t *testing.T) {
	for bg := 0.0; bg <= 600; bg += 0.5 {
		got, err := InitialDose(model.GlucoseReading(bg))
		if err != nil {
			t.Fatalf("InitialDose(%v) error: %v", bg, err)
		}
		want := Round1(bg / 100)
		if bg >= 300 {
			want = Round1(bg / 70)
		}
		if float64(got.Bolus) != want {
			t.Fatalf("InitialDose(%v).Bolus = %v, want %v", bg, got.Bolus, want)
		}
		if float64(got.Rate) != float64(got.Bolus) {
			t.Fatalf("InitialDose(%v) rate %v != bolus %v", bg, got.Rate, got.Bolus)
		}
	}
}

func TestInitialDose_RejectsInvalid(t *testing.T) {
	for _, bg := range []float64{-5, -0.1, math.NaN(), math.Inf(1)} {
		_, err := InitialDose(model.GlucoseReading(bg))
		if !errors.Is(err, model.ErrInvalidInput) {
			t.Fatalf("InitialDose(%v) error = %v, want ErrInvalidInput", bg, err)
		}
		var inv *model.InvalidInputError
		if !errors.As(err, &inv) || inv.Field != "bg" {
			t.Errorf("InitialDose(%v) should name field bg, got %v", bg, err)
		}
	}
}

func TestTitrate_Hypoglycemia(t *testing.T) {
	inputs := []model.TitrationInput{
		{CurrentBG: 65, PreviousBG: 0, LastRate: 0},
		{CurrentBG: 65, PreviousBG: 400, LastRate: 12},
		{CurrentBG: 65, PreviousBG: 40, LastRate: 3.5},
	}
	for _, in := range inputs {
		got, err := Titrate(in)
		if err != nil {
			t.Fatalf("Titrate(%+v) error: %v", in, err)
		}
		if got.NewRate != 0 {
			t.Errorf("NewRate = %v, want 0", got.NewRate)
		}
		if got.Advisory != AdvisoryHypoglycemia {
			t.Errorf("Advisory = %q, want %q", got.Advisory, AdvisoryHypoglycemia)
		}
		if got.NextCheckMinutes != 15 {
			t.Errorf("NextCheckMinutes = %d, want 15", got.NextCheckMinutes)
		}
		if got.DextroseML != 10.5 {
			t.Errorf("DextroseML = %v, want 10.5", got.DextroseML)
		}
		if !got.Hypoglycemic() {
			t.Error("Hypoglycemic() should be true")
		}
	}

	for bg := 0.0; bg < 70; bg += 0.5 {
		got, err := Titrate(model.TitrationInput{CurrentBG: model.GlucoseReading(bg), PreviousBG: 250, LastRate: 6})
		if err != nil {
			t.Fatalf("Titrate(bg=%v) error: %v", bg, err)
		}
		if got.NewRate != 0 || got.Advisory != AdvisoryHypoglycemia {
			t.Fatalf("bg=%v: got rate %v advisory %q", bg, got.NewRate, got.Advisory)
		}
	}
}

func TestTitrate_HoldBand(t *testing.T) {
	tests := []struct {
		name     string
		in       model.TitrationInput
		wantRate float64
		wantMult float64
	}{
		{"rising", model.TitrationInput{CurrentBG: 100, PreviousBG: 90, LastRate: 1}, 1.2, 0.03},
		{"rising from hypoglycemia", model.TitrationInput{CurrentBG: 110, PreviousBG: 60, LastRate: 2}, 1.5, 0.03},
		{"static at 70", model.TitrationInput{CurrentBG: 70, PreviousBG: 70, LastRate: 0}, 0.3, 0.03},
		{"fast fall", model.TitrationInput{CurrentBG: 100, PreviousBG: 150, LastRate: 2}, 0.6, 0.014},
		{"fall of exactly 40", model.TitrationInput{CurrentBG: 90, PreviousBG: 130, LastRate: 2}, 0.4, 0.014},
		{"gentle fall keeps base 0", model.TitrationInput{CurrentBG: 100, PreviousBG: 110, LastRate: 3}, 0, 0},
		{"gentle fall at 110", model.TitrationInput{CurrentBG: 110, PreviousBG: 139, LastRate: 3}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Titrate(tt.in)
			if err != nil {
				t.Fatalf("Titrate error: %v", err)
			}
			if got.Band != model.BandHold {
				t.Errorf("Band = %s, want HOLD", got.Band)
			}
			if float64(got.NewRate) != tt.wantRate {
				t.Errorf("NewRate = %v, want %v", got.NewRate, tt.wantRate)
			}
			if got.Multiplier != tt.wantMult {
				t.Errorf("Multiplier = %v, want %v", got.Multiplier, tt.wantMult)
			}
			if got.NextCheckMinutes != 30 {
				t.Errorf("NextCheckMinutes = %d, want 30", got.NextCheckMinutes)
			}
			if got.Advisory != "" {
				t.Errorf("Advisory = %q, want empty", got.Advisory)
			}
			if got.Guidance != GuidanceHold {
				t.Errorf("Guidance = %q", got.Guidance)
			}
			if got.Escalated {
				t.Error("hold band never escalates")
			}
		})
	}
}

func TestTitrate_Rates(t *testing.T) {
	tests := []struct {
		name          string
		in            model.TitrationInput
		wantRate      float64
		wantBand      model.Band
		wantEscalated bool
	}{
		{"low band gentle fall keeps base", model.TitrationInput{CurrentBG: 120, PreviousBG: 130, LastRate: 1}, 1.2, model.BandLow, false},
		{"just above hold", model.TitrationInput{CurrentBG: 110.5, PreviousBG: 120, LastRate: 1}, 1.0, model.BandLow, false},
		{"target band rising", model.TitrationInput{CurrentBG: 150, PreviousBG: 140, LastRate: 1}, 2.7, model.BandTarget, false},
		{"target band static", model.TitrationInput{CurrentBG: 150, PreviousBG: 150, LastRate: 1}, 2.7, model.BandTarget, false},
		{"target band fast fall", model.TitrationInput{CurrentBG: 160, PreviousBG: 210, LastRate: 4}, 1.4, model.BandTarget, false},
		{"high band fast fall", model.TitrationInput{CurrentBG: 200, PreviousBG: 260, LastRate: 4}, 2.0, model.BandHigh, false},
		{"high band falling 11 no escalation", model.TitrationInput{CurrentBG: 200, PreviousBG: 211, LastRate: 5}, 2.8, model.BandHigh, false},
		{"high band falling 10 escalates", model.TitrationInput{CurrentBG: 200, PreviousBG: 210, LastRate: 5}, 6.4, model.BandHigh, true},
		{"high band static pump off", model.TitrationInput{CurrentBG: 200, PreviousBG: 200, LastRate: 0}, 4.2, model.BandHigh, false},
		{"very high gentle fall", model.TitrationInput{CurrentBG: 300, PreviousBG: 330, LastRate: 2}, 7.2, model.BandVeryHigh, false},
		{"very high rising escalates", model.TitrationInput{CurrentBG: 300, PreviousBG: 280, LastRate: 10}, 12.4, model.BandVeryHigh, true},
		{"fall of exactly 40 is fast", model.TitrationInput{CurrentBG: 160, PreviousBG: 200, LastRate: 1}, 1.4, model.BandTarget, false},
		{"fall of 39 keeps base", model.TitrationInput{CurrentBG: 160, PreviousBG: 199, LastRate: 1}, 2.0, model.BandTarget, false},
		{"139.9 is low band", model.TitrationInput{CurrentBG: 139.9, PreviousBG: 144.9, LastRate: 1}, 1.6, model.BandLow, false},
		{"140 is target band", model.TitrationInput{CurrentBG: 140, PreviousBG: 145, LastRate: 1}, 1.6, model.BandTarget, false},
		{"179.9 never escalates", model.TitrationInput{CurrentBG: 179.9, PreviousBG: 189.9, LastRate: 5}, 2.4, model.BandTarget, false},
		{"180 escalates at delta 10", model.TitrationInput{CurrentBG: 180, PreviousBG: 190, LastRate: 5}, 6.2, model.BandHigh, true},
		{"249.9 gentle fall uses 0.02", model.TitrationInput{CurrentBG: 249.9, PreviousBG: 269.9, LastRate: 1}, 3.8, model.BandHigh, false},
		{"250 gentle fall uses 0.03", model.TitrationInput{CurrentBG: 250, PreviousBG: 270, LastRate: 1}, 5.7, model.BandVeryHigh, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Titrate(tt.in)
			if err != nil {
				t.Fatalf("Titrate error: %v", err)
			}
			if float64(got.NewRate) != tt.wantRate {
				t.Errorf("NewRate = %v, want %v (multiplier %v)", got.NewRate, tt.wantRate, got.Multiplier)
			}
			if got.Band != tt.wantBand {
				t.Errorf("Band = %s, want %s", got.Band, tt.wantBand)
			}
			if got.Escalated != tt.wantEscalated {
				t.Errorf("Escalated = %v, want %v", got.Escalated, tt.wantEscalated)
			}
			if got.Advisory != "" {
				t.Errorf("Advisory = %q, want empty", got.Advisory)
			}
			if got.NextCheckMinutes != 60 {
				t.Errorf("NextCheckMinutes = %d, want 60", got.NextCheckMinutes)
			}
		})
	}
}

func TestTitrate_PersistentHyperglycemiaEscalation(t *testing.T) {
	in := model.TitrationInput{CurrentBG: 200, PreviousBG: 205, LastRate: 3.0}
	got, err := Titrate(in)
	if err != nil {
		t.Fatalf("Titrate error: %v", err)
	}
	if got.Delta != 5 {
		t.Errorf("Delta = %v, want 5", got.Delta)
	}
	if !got.Escalated {
		t.Error("escalation should engage for bg 200 falling only 5")
	}
	if float64(got.NewRate) != 4.4 {
		t.Errorf("NewRate = %v, want 4.4", got.NewRate)
	}
	floor := (200 - 60) * 0.03
	if float64(got.NewRate) < Round1(floor) {
		t.Errorf("NewRate %v below (bg-60)*0.03 = %v", got.NewRate, floor)
	}
}

func TestTitrate_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name      string
		in        model.TitrationInput
		wantField string
	}{
		{"negative current", model.TitrationInput{CurrentBG: -1, PreviousBG: 100, LastRate: 1}, "current_bg"},
		{"negative previous", model.TitrationInput{CurrentBG: 100, PreviousBG: -1, LastRate: 1}, "previous_bg"},
		{"negative rate", model.TitrationInput{CurrentBG: 100, PreviousBG: 100, LastRate: -0.5}, "last_rate"},
		{"NaN current", model.TitrationInput{CurrentBG: model.GlucoseReading(math.NaN()), PreviousBG: 100, LastRate: 1}, "current_bg"},
		{"negative current below 70 still rejected", model.TitrationInput{CurrentBG: -40, PreviousBG: 100, LastRate: 1}, "current_bg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Titrate(tt.in)
			var inv *model.InvalidInputError
			if !errors.As(err, &inv) {
				t.Fatalf("error = %v, want *InvalidInputError", err)
			}
			if inv.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", inv.Field, tt.wantField)
			}
			if !errors.Is(err, model.ErrInvalidInput) {
				t.Error("error should wrap ErrInvalidInput")
			}
		})
	}
}

func TestTitrate_Idempotent(t *testing.T) {
	in := model.TitrationInput{CurrentBG: 231, PreviousBG: 228, LastRate: 4.6}
	first, err := Titrate(in)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Titrate(in)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("call %d = %+v, want %+v", i, again, first)
		}
	}

	d1, _ := InitialDose(288)
	d2, _ := InitialDose(288)
	if d1 != d2 {
		t.Errorf("InitialDose not idempotent: %+v vs %+v", d1, d2)
	}
}

func TestTitrate_MonotonicWithinBand(t *testing.T) {
	bands := []struct {
		lo, hi float64
	}{
		{70, 110},
		{111, 139},
		{140, 179},
		{180, 249},
		{250, 600},
	}
	deltas := []float64{-30, -1, 0, 5, 10, 11, 25, 39, 40, 80}
	rates := []float64{0, 2.5, 8}

	for _, b := range bands {
		for _, d := range deltas {
			for _, r := range rates {
				prev := -1.0
				for bg := b.lo; bg <= b.hi; bg++ {
					if bg+d < 0 {
						continue
					}
					got, err := Titrate(model.TitrationInput{
						CurrentBG:  model.GlucoseReading(bg),
						PreviousBG: model.GlucoseReading(bg + d),
						LastRate:   model.InfusionRate(r),
					})
					if err != nil {
						t.Fatalf("bg=%v delta=%v rate=%v: %v", bg, d, r, err)
					}
					if float64(got.NewRate) < prev {
						t.Fatalf("rate decreased at bg=%v delta=%v last=%v: %v < %v", bg, d, r, got.NewRate, prev)
					}
					prev = float64(got.NewRate)
				}
			}
		}
	}
}

func TestCalculate(t *testing.T) {
	out, err := Calculate(model.Request{Mode: model.ModeInitial, Initial: &model.InitialInput{BG: 256}})
	if err != nil {
		t.Fatalf("Calculate initial: %v", err)
	}
	if out.Dose == nil || out.Titration != nil {
		t.Fatalf("initial outcome = %+v", out)
	}
	if float64(out.Dose.Bolus) != 2.6 {
		t.Errorf("Bolus = %v, want 2.6", out.Dose.Bolus)
	}

	out, err = Calculate(model.Request{Mode: model.ModeTitrate, Titration: &model.TitrationInput{CurrentBG: 65, PreviousBG: 90, LastRate: 2}})
	if err != nil {
		t.Fatalf("Calculate titrate: %v", err)
	}
	if out.Titration == nil || out.Dose != nil {
		t.Fatalf("titrate outcome = %+v", out)
	}
	if out.Titration.Advisory != AdvisoryHypoglycemia {
		t.Errorf("Advisory = %q", out.Titration.Advisory)
	}
}

func TestCalculate_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name      string
		req       model.Request
		wantField string
	}{
		{"no mode", model.Request{Initial: &model.InitialInput{BG: 100}}, "mode"},
		{"unknown mode", model.Request{Mode: "bolus"}, "mode"},
		{"initial without reading", model.Request{Mode: model.ModeInitial}, "bg"},
		{"titrate without readings", model.Request{Mode: model.ModeTitrate, Initial: &model.InitialInput{BG: 100}}, "current_bg"},
		{"initial negative", model.Request{Mode: model.ModeInitial, Initial: &model.InitialInput{BG: -5}}, "bg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.req)
			var inv *model.InvalidInputError
			if !errors.As(err, &inv) {
				t.Fatalf("error = %v, want *InvalidInputError", err)
			}
			if inv.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", inv.Field, tt.wantField)
			}
		})
	}
}
