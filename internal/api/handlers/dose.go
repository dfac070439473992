package handlers

import (
	"log"
	"net/http"

	"insulin-infusion/internal/api/models"
	"insulin-infusion/internal/dosing"

	"github.com/gin-gonic/gin"
)

// DoseHandler handles start-up and titration requests
type DoseHandler struct{}

// NewDoseHandler creates a new dose handler
func NewDoseHandler() *DoseHandler {
	return &DoseHandler{}
}

// InitialDose handles POST /api/v1/dose/initial
func (h *DoseHandler) InitialDose(c *gin.Context) {
	var req models.InitialDoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	dose, err := dosing.InitialDose(req.ToModel())
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("DoseHandler: initial bg=%v bolus=%v rate=%v", *req.BG, dose.Bolus, dose.Rate)
	c.JSON(http.StatusOK, models.NewDoseResponse(dose))
}

// Titrate handles POST /api/v1/dose/titrate
func (h *DoseHandler) Titrate(c *gin.Context) {
	var req models.TitrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	res, err := dosing.Titrate(req.ToModel())
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("DoseHandler: titrate bg=%v prev=%v last=%v -> rate=%v band=%s",
		*req.CurrentBG, *req.PreviousBG, *req.LastRate, res.NewRate, res.Band)
	c.JSON(http.StatusOK, models.NewTitrationResponse(res))
}

// Calculate handles POST /api/v1/dose with an explicit mode
func (h *DoseHandler) Calculate(c *gin.Context) {
	var req models.DoseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}

	mreq, err := req.ToModel()
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := dosing.Calculate(mreq)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewOutcomeResponse(out))
}

func respondError(c *gin.Context, err error) {
	status, body := models.FromError(err)
	log.Printf("Handler: rejecting %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(status, body)
}
