package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fitstudio/handlers"
	"fitstudio/middleware"
	"fitstudio/utils"
)

// HandlerBundle collects the wired handlers for route registration.
type HandlerBundle struct {
	Auth     *handlers.AuthHandler
	Schedule *handlers.ScheduleHandler
	Lesson   *handlers.LessonHandler
	Trigger  *handlers.TriggerHandler
}

// RegisterAuthRoutes registers account endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/coaches/register", hb.Auth.RegisterCoachHandler)
		api.POST("/coaches/login", hb.Auth.LoginCoachHandler)
		api.POST("/customers/register", hb.Auth.RegisterCustomerHandler)
		api.POST("/customers/login", hb.Auth.LoginCustomerHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthMiddleware())
		api.PUT("/fcm-token", hb.Auth.UpdateFCMTokenHandler)
	}
}

// RegisterScheduleRoutes sets up the endpoints for the day scheduler.
func RegisterScheduleRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/schedule")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/coaches/:coachID/seats", hb.Schedule.ListSeatsHandler)
		api.POST("/coaches/:coachID/conflicts", hb.Schedule.ConflictsHandler)
		api.POST("/reserve", hb.Schedule.ReserveHandler)
		api.POST("/seats/:seatID/confirm", hb.Schedule.ConfirmSeatHandler)
		api.POST("/seats/:seatID/cancel", hb.Schedule.CancelSeatHandler)

		// Coach-only schedule management.
		coach := api.Group("")
		coach.Use(middleware.JWTAuthMiddleware(utils.RoleCoach))
		coach.POST("/breaks", hb.Schedule.AddBreakHandler)
		coach.DELETE("/breaks", hb.Schedule.RemoveBreakHandler)
		coach.POST("/seats/:seatID/checkin", hb.Schedule.CheckInSeatHandler)
	}
}

// RegisterLessonRoutes sets up lesson-credit endpoints.
func RegisterLessonRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/lessons")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("/entries", hb.Lesson.EntriesHandler)

		coach := api.Group("")
		coach.Use(middleware.JWTAuthMiddleware(utils.RoleCoach))
		coach.POST("/recharge", hb.Lesson.RechargeHandler)
		coach.POST("/deduct", hb.Lesson.DeductHandler)
		coach.GET("/entries/:customerID", hb.Lesson.EntriesHandler)
	}
}

// RegisterTriggerRoutes sets up recurring-rule endpoints.
func RegisterTriggerRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/triggers")
	{
		api.Use(middleware.JWTAuthMiddleware(utils.RoleCoach))
		api.POST("", hb.Trigger.CreateTriggerHandler)
		api.GET("", hb.Trigger.ListTriggersHandler)
		api.DELETE("/:triggerID", hb.Trigger.DeactivateTriggerHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "fitstudio scheduling service"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterScheduleRoutes(r, hb)
	RegisterLessonRoutes(r, hb)
	RegisterTriggerRoutes(r, hb)
	RegisterHealthRoute(r)
}
