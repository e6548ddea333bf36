package app

import "github.com/gin-gonic/gin"

// Routes registers the public API on the router.
func (a *App) Routes(router *gin.Engine) {
	router.GET("/healthz", a.HealthHandler)

	api := router.Group("/api")
	{
		api.GET("/available-slots", a.GetAvailableSlotsHandler)
		api.GET("/unavailable-dates", a.GetUnavailableDatesHandler)
		api.POST("/book-appointment", a.BookAppointmentHandler)
		api.POST("/contact", a.ContactHandler)
	}
}
