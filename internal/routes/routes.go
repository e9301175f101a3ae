package routes

import (
	"github.com/gin-gonic/gin"

	"patient-dashboard/internal/handlers"
	"patient-dashboard/internal/middleware"
	"patient-dashboard/internal/mockapi"
	"patient-dashboard/internal/session"
)

// SetupRoutes configures the dashboard routes.
func SetupRoutes(router *gin.Engine, dashboardHandler *handlers.DashboardHandler, store *session.Store, secureCookie bool) {
	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	// Everything else belongs to a browser session
	app := router.Group("")
	app.Use(middleware.Session(store, secureCookie))
	{
		app.GET("/", dashboardHandler.Index)
		app.GET("/dashboard", dashboardHandler.Show)

		patientRoutes := app.Group("/dashboard/patients")
		{
			patientRoutes.POST("", dashboardHandler.SubmitAddPatient)
			patientRoutes.GET("/new", dashboardHandler.OpenAddPatient)
			patientRoutes.POST("/new/field", dashboardHandler.ChangeField)
			patientRoutes.POST("/new/cancel", dashboardHandler.CancelAddPatient)
		}

		app.GET("/api/dashboard/patients", dashboardHandler.ListPatients)
	}
}

// SetupMockAPIRoutes configures the development patient API.
func SetupMockAPIRoutes(router *gin.Engine, h *mockapi.Handler) {
	router.GET("/health", h.Health)

	patientRoutes := router.Group("/patients")
	{
		patientRoutes.GET("", h.ListPatients)
		patientRoutes.POST("", h.CreatePatient)
		patientRoutes.GET("/:id/document", h.GetDocument)
	}
}
