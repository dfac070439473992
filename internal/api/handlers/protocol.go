package handlers

import (
	"net/http"

	"insulin-infusion/internal/dosing"

	"github.com/gin-gonic/gin"
)

// GetProtocol handles GET /api/v1/protocol
func GetProtocol(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"protocol": dosing.Reference()})
}
