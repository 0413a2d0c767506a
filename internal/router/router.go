package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/walkthru-dev/walkthru/internal/handlers"
	"github.com/walkthru-dev/walkthru/internal/middleware"
	"github.com/walkthru-dev/walkthru/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.POST("/register", handlers.Register)

	properties := r.Group("/properties", middleware.AuthMiddleware())
	{
		properties.GET("", handlers.ListProperties)
		properties.POST("", middleware.AdminOnly(), handlers.CreateProperty)
		properties.PUT("/:name", middleware.AdminOnly(), handlers.UpdateProperty)
	}

	r.POST("/submit-form", middleware.AuthMiddleware(), handlers.SubmitForm)
	r.GET("/download-pdf", middleware.AuthMiddleware(), handlers.DownloadPDF)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.POST("/login", handlers.Login)
		api.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		api.GET("/users", middleware.AuthMiddleware(), handlers.ListUsers)
		api.POST("/users", middleware.AuthMiddleware(), middleware.AdminOnly(), handlers.CreateMember)

		assignments := api.Group("/assignments", middleware.AuthMiddleware())
		{
			assignments.GET("", handlers.ListAssignments)
			assignments.GET("/calendar", handlers.CalendarEvents)
			assignments.POST("", handlers.CreateAssignment)
			assignments.PUT("/:id", handlers.UpdateAssignment)
			assignments.DELETE("/:id", handlers.DeleteAssignment)
		}

		api.POST("/save-subscription", middleware.AuthMiddleware(), handlers.SaveSubscription)
		api.POST("/send-push-notification", middleware.AuthMiddleware(), handlers.SendPushNotification)
	}

	return r
}
