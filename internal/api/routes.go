package api

import (
	"net/http"

	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	adminService service.AdminService,
	contentService service.ContentService,
	clientService service.ClientService,
) {
	authHandler := NewAuthHandler(authService)
	adminHandler := NewAdminHandler(adminService)
	contentHandler := NewContentHandler(contentService)
	clientHandler := NewClientHandler(clientService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			roleRaw, _ := c.Get(ContextUserRoleKey)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": roleRaw})
		})

		// --- Admin Routes ---
		// All require authentication AND the 'admin' role.
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			// Roster
			adminGroup.POST("/clients", adminHandler.AddClientByEmail)
			adminGroup.GET("/clients", adminHandler.GetManagedClients)
			adminGroup.PUT("/clients/:clientId/height", adminHandler.SetClientHeight)

			// Engagement board
			adminGroup.GET("/clients/engagement", adminHandler.GetEngagementOverview)
			adminGroup.GET("/clients/:clientId/overview", adminHandler.GetClientOverview)

			// Weigh-ins
			adminGroup.POST("/clients/:clientId/weighins", adminHandler.RecordWeighIn)
			adminGroup.GET("/clients/:clientId/weighins", adminHandler.GetClientWeighIns)
			adminGroup.DELETE("/clients/:clientId/weighins/:weighInId", adminHandler.DeleteWeighIn)
			adminGroup.GET("/clients/:clientId/weighins/export", adminHandler.ExportWeighInsCSV)
			adminGroup.GET("/clients/:clientId/report", adminHandler.ExportReport)

			// Goals
			adminGroup.POST("/clients/:clientId/goals", adminHandler.CreateGoal)
			adminGroup.GET("/clients/:clientId/goals", adminHandler.GetClientGoals)
			adminGroup.PUT("/goals/:goalId/progress", adminHandler.SetGoalProgress)
			adminGroup.DELETE("/goals/:goalId", adminHandler.DeleteGoal)

			// Session assignments
			adminGroup.POST("/clients/:clientId/sessions", contentHandler.CreateSession)
			adminGroup.GET("/sessions", contentHandler.GetCreatedSessions)
			adminGroup.DELETE("/sessions/:sessionId", contentHandler.DeleteSession)
			adminGroup.POST("/sessions/:sessionId/assign-all", contentHandler.AssignToAllClients)

			// Session media upload flow
			adminGroup.POST("/sessions/:sessionId/media/upload-url", contentHandler.RequestUploadURL)
			adminGroup.POST("/sessions/:sessionId/media/confirm", contentHandler.ConfirmUpload)

			// Saboteur taxonomy
			adminGroup.POST("/saboteurs", contentHandler.CreateSaboteur)
			adminGroup.GET("/saboteurs", contentHandler.ListSaboteurs)
			adminGroup.PUT("/saboteurs/:saboteurId", contentHandler.UpdateSaboteur)
			adminGroup.PUT("/saboteurs/:saboteurId/active", contentHandler.SetSaboteurActive)
			adminGroup.DELETE("/saboteurs/:saboteurId", contentHandler.DeleteSaboteur)

			// AI configuration
			adminGroup.PUT("/ai-configs", contentHandler.UpsertAIConfig)
			adminGroup.GET("/ai-configs", contentHandler.ListAIConfigs)
			adminGroup.GET("/ai-configs/:functionality", contentHandler.GetAIConfig)

			// Courses
			adminGroup.POST("/courses", contentHandler.CreateCourse)
			adminGroup.GET("/courses", contentHandler.ListCourses)
			adminGroup.GET("/courses/:courseId", contentHandler.GetCourse)
			adminGroup.DELETE("/courses/:courseId", contentHandler.DeleteCourse)
		}

		// --- Client Routes ---
		clientGroup := protected.Group("/client")
		clientGroup.Use(RoleMiddleware(domain.RoleClient))
		{
			clientGroup.GET("/dashboard", clientHandler.GetDashboard)
			clientGroup.GET("/weighins", clientHandler.GetMyWeighIns)

			// Sessions and lifecycle
			clientGroup.GET("/sessions", clientHandler.GetMySessions)
			clientGroup.POST("/sessions/:sessionId/start", clientHandler.StartSession)
			clientGroup.POST("/sessions/:sessionId/complete", clientHandler.CompleteSession)
			clientGroup.GET("/sessions/:sessionId/media", clientHandler.GetSessionMedia)

			// Courses and lesson progress
			clientGroup.GET("/courses", clientHandler.ListCourses)
			clientGroup.GET("/courses/:courseId", clientHandler.GetCourse)
			clientGroup.POST("/courses/:courseId/lessons/:lessonId/toggle", clientHandler.ToggleLessonComplete)
			clientGroup.PUT("/courses/:courseId/lessons/:lessonId/note", clientHandler.SaveLessonNote)
		}
	}
}
