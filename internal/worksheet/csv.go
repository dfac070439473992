package worksheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"insulin-infusion/internal/model"
)

// ReadReadingsCSV parses readings from CSV with a header row. A "bg" column
// is required; a "time" column (RFC3339) is optional.
func ReadReadingsCSV(r io.Reader) ([]Reading, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty readings file")
		}
		return nil, err
	}
	bgCol, timeCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "bg", "glucose", "bg_mg_dl":
			bgCol = i
		case "time", "timestamp":
			timeCol = i
		}
	}
	if bgCol < 0 {
		return nil, fmt.Errorf("readings header %v has no bg column", header)
	}

	var out []Reading
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if bgCol >= len(rec) || strings.TrimSpace(rec[bgCol]) == "" {
			return nil, fmt.Errorf("line %d: %w", line, model.MissingField("bg"))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[bgCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bg %q is not a number", line, rec[bgCol])
		}
		rd := Reading{BG: model.GlucoseReading(v)}
		if timeCol >= 0 && timeCol < len(rec) && strings.TrimSpace(rec[timeCol]) != "" {
			ts, err := time.Parse(time.RFC3339, strings.TrimSpace(rec[timeCol]))
			if err != nil {
				return nil, fmt.Errorf("line %d: time %q must be RFC3339", line, rec[timeCol])
			}
			rd.Time = ts
		}
		out = append(out, rd)
	}
	return out, nil
}

func LoadReadingsCSV(path string) ([]Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadReadingsCSV(f)
}

func WriteCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteRows(f, rows)
}

func WriteRows(out io.Writer, rows []Row) error {
	w := csv.NewWriter(out)

	header := []string{
		"index",
		"time",
		"bg",
		"previous_bg",
		"delta",
		"mode",
		"band",
		"bolus_u",
		"last_rate_u_h",
		"rate_u_h",
		"multiplier",
		"escalated",
		"advisory",
		"guidance",
		"dextrose_ml",
		"next_check_minutes",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Time),
			fmtFloat(float64(r.BG)),
			fmtFloat(float64(r.PreviousBG)),
			fmtFloat(r.Delta),
			string(r.Mode),
			string(r.Band),
			fmtFloat(float64(r.Bolus)),
			fmtFloat(float64(r.LastRate)),
			fmtFloat(float64(r.Rate)),
			strconv.FormatFloat(r.Multiplier, 'f', 4, 64),
			strconv.FormatBool(r.Escalated),
			r.Advisory,
			r.Guidance,
			fmtFloat(r.DextroseML),
			strconv.Itoa(r.NextCheckMinutes),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64)
}
