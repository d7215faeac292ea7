package router

import (
	"net/http"
	"time"

	"tripscout/config"
	"tripscout/internal/handler"
	"tripscout/internal/middleware"
	"tripscout/internal/nudge"
	"tripscout/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, engine *nudge.Engine) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	tripRepo := repository.NewTripRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	eventRepo := repository.NewEventRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Handlers
	tripHandler := handler.NewTripHandler(tripRepo, eventRepo, engine)
	taskHandler := handler.NewTaskHandler(taskRepo, tripRepo)
	participantHandler := handler.NewParticipantHandler(participantRepo, tripRepo, engine)
	nudgeHandler := handler.NewNudgeHandler(engine)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authMw := middleware.RequireAPISecret(&cfg.Auth)

	api := r.Group("/api")
	api.Use(authMw)
	{
		trips := api.Group("/trips")
		{
			trips.POST("", tripHandler.Create)
			trips.GET("", tripHandler.List)
			trips.GET("/:trip_id", tripHandler.Get)
			trips.PATCH("/:trip_id/status", tripHandler.UpdateStatus)
			trips.GET("/:trip_id/events", tripHandler.Events)

			trips.POST("/:trip_id/tasks", taskHandler.Create)
			trips.GET("/:trip_id/tasks", taskHandler.List)
			trips.POST("/:trip_id/participants", participantHandler.Add)
			trips.GET("/:trip_id/participants", participantHandler.List)
		}
		api.PATCH("/tasks/:id/status", taskHandler.UpdateStatus)
		api.POST("/participants/confirm", participantHandler.Confirm)

		nudgeGroup := api.Group("/nudge")
		{
			nudgeGroup.POST("/run", nudgeHandler.Run)
			nudgeGroup.POST("/trigger-event", nudgeHandler.TriggerEvent)
			nudgeGroup.GET("/settings", nudgeHandler.Settings)
			nudgeGroup.GET("/notifications/:trip_id", notificationHandler.ListByTrip)
			nudgeGroup.GET("/participant-notifications", notificationHandler.ListByParticipant)
			nudgeGroup.GET("/unread-count", notificationHandler.UnreadCount)
			nudgeGroup.POST("/notifications/read", notificationHandler.MarkRead)
			nudgeGroup.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		}
	}

	return r
}
