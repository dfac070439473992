package handlers

import (
	"fmt"
	"net/http"
	"time"

	"insulin-infusion/internal/api/models"
	"insulin-infusion/internal/model"
	"insulin-infusion/internal/worksheet"

	"github.com/gin-gonic/gin"
)

// RunWorksheet handles POST /api/v1/worksheet
func RunWorksheet(c *gin.Context) {
	var req models.WorksheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	readings := make([]worksheet.Reading, len(req.Readings))
	for i, r := range req.Readings {
		readings[i].BG = model.GlucoseReading(*r.BG)
		if r.Time == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, r.Time)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: models.ErrorDetail{
					Code:    "INVALID_REQUEST",
					Message: fmt.Sprintf("readings[%d].time must be RFC3339", i),
					Details: map[string]interface{}{"field": "time", "index": i},
				},
			})
			return
		}
		readings[i].Time = ts
	}

	res, err := worksheet.Run(readings)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildWorksheetResponse(res))
}

func buildWorksheetResponse(res *worksheet.Result) models.WorksheetResponse {
	rows := make([]models.WorksheetRow, len(res.Rows))
	for i, r := range res.Rows {
		row := models.WorksheetRow{
			Index:            r.Index,
			BG:               float64(r.BG),
			PreviousBG:       float64(r.PreviousBG),
			Delta:            r.Delta,
			Mode:             string(r.Mode),
			Band:             string(r.Band),
			BolusUnits:       float64(r.Bolus),
			LastRate:         float64(r.LastRate),
			RateUnitsPerHour: float64(r.Rate),
			Multiplier:       r.Multiplier,
			Escalated:        r.Escalated,
			Advisory:         r.Advisory,
			Guidance:         r.Guidance,
			DextroseML:       r.DextroseML,
			NextCheckMinutes: r.NextCheckMinutes,
		}
		if !r.Time.IsZero() {
			row.Time = r.Time.Format(time.RFC3339)
		}
		rows[i] = row
	}
	return models.WorksheetResponse{
		Rows:                  rows,
		FinalRateUnitsPerHour: float64(res.FinalRate),
		HypoglycemiaCount:     res.HypoglycemiaCount,
	}
}
