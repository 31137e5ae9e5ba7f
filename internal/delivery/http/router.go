package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/HushmKun/SeekerOfLight/internal/delivery/http/controllers"
	"github.com/HushmKun/SeekerOfLight/internal/service"
	"github.com/HushmKun/SeekerOfLight/pkg/logger"
)

func InitRoutes(l logger.Log, u service.Collection, identity *controllers.IdentityProvider, users controllers.UserService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	r.Use(cors.New(config))

	statusController := controllers.NewStatusHandler()
	levelController := controllers.NewLevelHandler(l, u)
	lessonController := controllers.NewLessonHandler(l, u)
	progressController := controllers.NewProgressHandler(l, u.ProgressService)
	managementController := controllers.NewManagementHandler(l, u.CatalogService)
	userController := controllers.NewUserHandler(l, users)

	v1 := r.Group("/v1", controllers.LoggingMiddleware(l), identity.Identify)
	{
		v1.GET("/status", statusController.Status)

		v1.GET("/me", controllers.RequireAuth, userController.Me)

		levels := v1.Group("/levels")
		{
			levels.GET("", levelController.Levels)
			levels.GET("/:level_id", levelController.Level)
			levels.GET("/:level_id/lessons", levelController.Lessons)
		}

		lessons := v1.Group("/lessons")
		{
			lessons.GET("/search", lessonController.Search)
			lessons.GET("/:lesson_id", lessonController.Lesson)
		}

		learner := v1.Group("", controllers.RequireAuth)
		{
			learner.GET("/progress/:lesson_id", progressController.GetProgress)
			learner.POST("/progress/:lesson_id", progressController.UpsertProgress)
			learner.PUT("/progress/:lesson_id", progressController.UpsertProgress)
			learner.GET("/progress/summary", progressController.ProgressSummary)
			learner.GET("/progress/next", lessonController.Next)
			learner.GET("/bookmarks", progressController.Bookmarked)
		}

		admin := v1.Group("", controllers.RequireAuth, controllers.RequireRoles(controllers.AdminRole))
		{
			admin.POST("/levels", managementController.CreateLevelHandler)
			admin.DELETE("/levels/:level_id", managementController.DeleteLevelHandler)
			admin.POST("/levels/:level_id/lessons", managementController.CreateLessonHandler)
			admin.PUT("/lessons/:lesson_id/video", managementController.UploadVideo)
			admin.DELETE("/lessons/:lesson_id", managementController.DeleteLessonHandler)
		}
	}
	return r
}
