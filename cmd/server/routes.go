package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"vininfo.backend/internal/infrastructure/metrics"
	"vininfo.backend/internal/interfaces/http/handlers"
	"vininfo.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	authHandler        *handlers.AuthHandler
	vehicleHandler     *handlers.VehicleHandler
	reminderHandler    *handlers.ReminderHandler
	preferenceHandler  *handlers.PreferenceHandler
	dispatchHandler    *handlers.DispatchHandler
	unsubscribeHandler *handlers.UnsubscribeHandler
	registryHandler    *handlers.RegistryHandler
	healthHandler      *handlers.HealthHandler
	sessionAuth        gin.HandlerFunc
	cronAuth           gin.HandlerFunc
	adminAuth          gin.HandlerFunc
	schema             gin.HandlerFunc
	corsOrigins        []string
	metrics            *metrics.Metrics
}

func newRouter(d routeDeps) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	if d.metrics != nil {
		r.Use(middleware.MetricsMiddleware(d.metrics))
	}

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	registerHealthRoutes(r, d)
	registerAPIRoutes(r, d)
	return r
}

func registerHealthRoutes(r *gin.Engine, d routeDeps) {
	r.GET("/health", d.healthHandler.Health)
	if d.metrics != nil {
		r.GET("/metrics", gin.WrapH(d.metrics.Handler()))
	}
}

func registerAPIRoutes(r *gin.Engine, d routeDeps) {
	api := r.Group("/api")

	// Registry proxy (public, no database)
	vehicle := api.Group("/vehicle")
	vehicle.Use(middleware.CORSMiddleware(d.corsOrigins))
	{
		vehicle.GET("", d.registryHandler.LookupVehicle)
		vehicle.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	db := api.Group("")
	if d.schema != nil {
		db.Use(d.schema)
	}

	auth := db.Group("/auth")
	{
		auth.POST("/register", d.authHandler.Register)
		auth.POST("/login", d.authHandler.Login)
		auth.POST("/logout", d.authHandler.Logout)
		auth.GET("/me", d.sessionAuth, d.authHandler.Me)
		auth.POST("/verify-email", d.sessionAuth, d.authHandler.VerifyEmail)
		auth.POST("/resend-verification", d.sessionAuth, d.authHandler.ResendVerification)
	}

	// Client zone (session cookie)
	client := db.Group("/client")
	client.Use(d.sessionAuth)
	{
		client.GET("/vehicles", d.vehicleHandler.ListVehicles)
		client.POST("/vehicles", middleware.IdempotencyMiddleware(), d.vehicleHandler.SaveVehicle)
		client.PATCH("/vehicles", d.vehicleHandler.RenameVehicle)
		client.DELETE("/vehicles", d.vehicleHandler.DeleteVehicle)

		client.GET("/reminders", d.reminderHandler.ListReminders)
		client.POST("/reminders", middleware.IdempotencyMiddleware(), d.reminderHandler.CreateReminder)
		client.PATCH("/reminders", d.reminderHandler.UpdateReminder)
		client.DELETE("/reminders", d.reminderHandler.DeleteReminder)

		client.GET("/preferences", d.preferenceHandler.GetPreferences)
		client.PATCH("/preferences", d.preferenceHandler.UpdatePreferences)
	}

	db.GET("/email/unsubscribe", d.unsubscribeHandler.Unsubscribe)

	db.GET("/cron/send-reminders", d.cronAuth, d.dispatchHandler.SendReminders)
	db.POST("/admin/send-marketing", d.adminAuth, middleware.IdempotencyMiddleware(), d.dispatchHandler.SendMarketing)
}
