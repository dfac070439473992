package api

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"insulin-infusion/internal/api/handlers"
	"insulin-infusion/internal/api/middleware"
	"insulin-infusion/internal/api/models"
	"insulin-infusion/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var tagNamesOnce sync.Once

// useJSONFieldNames makes validation errors report "current_bg" rather than
// the Go field name.
func useJSONFieldNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	})
}

// NewRouter wires middleware and routes.
func NewRouter(cfg *config.Config) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	doseHandler := handlers.NewDoseHandler()

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/dose", doseHandler.Calculate)
		api.POST("/dose/initial", doseHandler.InitialDose)
		api.POST("/dose/titrate", doseHandler.Titrate)

		api.POST("/worksheet", handlers.RunWorksheet)
		api.GET("/protocol", handlers.GetProtocol)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "Not found",
			},
		})
	})

	return router
}
