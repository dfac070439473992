package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"insulin-infusion/internal/dosing"
	"insulin-infusion/internal/model"
	"insulin-infusion/internal/worksheet"

	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "initial":
		cmdInitial(os.Args[2:])
	case "titrate":
		cmdTitrate(os.Args[2:])
	case "worksheet":
		cmdWorksheet(os.Args[2:])
	case "protocol":
		cmdProtocol(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli initial --bg 256")
	fmt.Println("  cli titrate --current 200 --previous 205 --rate 3.0")
	fmt.Println("  cli worksheet --in readings.csv --out results/worksheet.csv")
	fmt.Println("  cli protocol [--format text|yaml]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - glucose in mg/dL, rates in units/hour")
	fmt.Println("  - worksheet replays a series of readings: first is a start-up dose, the rest are hourly titrations")
}

func cmdInitial(args []string) {
	fs := flag.NewFlagSet("initial", flag.ExitOnError)
	bg := fs.Float64("bg", 0, "Blood glucose (mg/dL)")
	_ = fs.Parse(args)

	requireFlags(fs, "bg")

	res, err := dosing.InitialDose(model.GlucoseReading(*bg))
	if err != nil {
		fail(err)
	}
	fmt.Println(dosing.DescribeDose(res))
}

func cmdTitrate(args []string) {
	fs := flag.NewFlagSet("titrate", flag.ExitOnError)
	current := fs.Float64("current", 0, "Current blood glucose (mg/dL)")
	previous := fs.Float64("previous", 0, "Previous blood glucose (mg/dL)")
	rate := fs.Float64("rate", 0, "Current infusion rate (units/hour)")
	_ = fs.Parse(args)

	requireFlags(fs, "current", "previous", "rate")

	res, err := dosing.Titrate(model.TitrationInput{
		CurrentBG:  model.GlucoseReading(*current),
		PreviousBG: model.GlucoseReading(*previous),
		LastRate:   model.InfusionRate(*rate),
	})
	if err != nil {
		fail(err)
	}
	fmt.Println(dosing.DescribeTitration(res))
	fmt.Printf("band=%s delta=%s multiplier=%.4f escalated=%t\n", res.Band, dosing.Fixed1(res.Delta), res.Multiplier, res.Escalated)
}

func cmdWorksheet(args []string) {
	fs := flag.NewFlagSet("worksheet", flag.ExitOnError)
	inPath := fs.String("in", "", "CSV of readings with a bg column and optional RFC3339 time column")
	outPath := fs.String("out", "results/worksheet.csv", "Output CSV path")
	_ = fs.Parse(args)

	if *inPath == "" {
		fmt.Println("--in is required")
		os.Exit(2)
	}

	readings, err := worksheet.LoadReadingsCSV(*inPath)
	if err != nil {
		fail(err)
	}
	res, err := worksheet.Run(readings)
	if err != nil {
		fail(err)
	}

	// ensure output dir exists
	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		fail(err)
	}
	if err := worksheet.WriteCSV(*outPath, res.Rows); err != nil {
		fail(err)
	}

	fmt.Printf("Wrote %d rows to %s\n", len(res.Rows), *outPath)
	fmt.Printf("Final rate=%s U/h Hypoglycemia events=%d\n", dosing.Fixed1(float64(res.FinalRate)), res.HypoglycemiaCount)
}

func cmdProtocol(args []string) {
	fs := flag.NewFlagSet("protocol", flag.ExitOnError)
	format := fs.String("format", "text", "Output format: text or yaml")
	_ = fs.Parse(args)

	p := dosing.Reference()
	switch *format {
	case "yaml":
		out, err := yaml.Marshal(p)
		if err != nil {
			fail(err)
		}
		fmt.Print(string(out))
	case "text":
		fmt.Println(p.Name)
		fmt.Printf("target: %s\n\n", p.TargetRange)
		fmt.Println("start-up:")
		for _, s := range p.StartUp {
			fmt.Printf("  - %s\n", s)
		}
		fmt.Println("hourly:")
		for _, s := range p.Hourly {
			fmt.Printf("  - %s\n", s)
		}
		fmt.Println("")
		fmt.Printf("%-14s %-12s %-10s %s\n", "band", "mg/dL", "base", "note")
		for _, b := range p.Bands {
			fmt.Printf("%-14s %-12s %-10.3f %s\n", b.Band, b.Range, b.BaseMultiplier, b.Note)
		}
	default:
		fmt.Printf("unsupported format: %q\n", *format)
		os.Exit(2)
	}
}

// requireFlags exits with usage when any named flag was not given.
func requireFlags(fs *flag.FlagSet, names ...string) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var missing []string
	for _, n := range names {
		if !set[n] {
			missing = append(missing, "--"+n)
		}
	}
	if len(missing) > 0 {
		fmt.Printf("%s is required\n", strings.Join(missing, ", "))
		fs.Usage()
		os.Exit(2)
	}
}

func fail(err error) {
	var inv *model.InvalidInputError
	if errors.As(err, &inv) {
		fmt.Fprintf(os.Stderr, "invalid input: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}
