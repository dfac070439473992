package main

import (
	"flag"
	"fmt"
	"time"

	"insulin-infusion/internal/dosing"
	"insulin-infusion/internal/model"
	"insulin-infusion/internal/worksheet"
)

// Demo:
// - Build an hourly series of bedside readings (or load one from CSV)
// - Replay it through the start-up and hourly titration steps
// - Print the worksheet to show how the pieces fit together
func main() {
	inPath := flag.String("in", "", "Optional CSV of readings (bg column, optional RFC3339 time column)")
	n := flag.Int("n", 12, "Number of readings to show")
	outCSV := flag.String("out", "", "Optional path to write worksheet CSV (e.g. results/worksheet.csv)")
	flag.Parse()

	readings := sampleReadings()
	if *inPath != "" {
		loaded, err := worksheet.LoadReadingsCSV(*inPath)
		if err != nil {
			panic(err)
		}
		readings = loaded
	}

	result, err := worksheet.Run(readings)
	if err != nil {
		panic(err)
	}

	fmt.Printf("Loaded %d readings\n", len(readings))
	fmt.Printf("Protocol=%s\n\n", dosing.Reference().Name)

	for i := 0; i < min(*n, len(result.Rows)); i++ {
		r := result.Rows[i]
		fmt.Printf(
			"%s bg=%5.0f  band=%-12s  mode=%-8s  bolus=%4s  rate=%5s  next=%3d min  %s\n",
			fmtClock(r.Time),
			float64(r.BG),
			string(r.Band),
			string(r.Mode),
			dosing.Fixed1(float64(r.Bolus)),
			dosing.Fixed1(float64(r.Rate)),
			r.NextCheckMinutes,
			r.Advisory,
		)
	}

	if *outCSV != "" {
		if err := worksheet.WriteCSV(*outCSV, result.Rows); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	fmt.Printf("\nDone. Final rate=%s U/h  Hypoglycemia events=%d\n", dosing.Fixed1(float64(result.FinalRate)), result.HypoglycemiaCount)
}

// sampleReadings is a patient admitted at 310 mg/dL who settles into range
// and then dips low overnight.
func sampleReadings() []worksheet.Reading {
	start := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	values := []float64{310, 288, 270, 262, 231, 198, 176, 158, 141, 122, 104, 66}
	out := make([]worksheet.Reading, len(values))
	for i, v := range values {
		out[i] = worksheet.Reading{Time: start.Add(time.Duration(i) * time.Hour), BG: model.GlucoseReading(v)}
	}
	return out
}

func fmtClock(t time.Time) string {
	if t.IsZero() {
		return "--:--"
	}
	return t.Format("2006-01-02 15:04")
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
