package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.HealthCheck)
	r.GET("/stats", handler.GetStats)

	api := r.Group("/api/v1")
	{
		articles := api.Group("/articles")
		{
			articles.POST("", handler.TranslateArticle)
			articles.GET("", handler.ListArticles)
			articles.GET("/unfiled", handler.ListUnfiledArticles)
			articles.GET("/search", handler.SearchArticles)
			articles.GET("/check-url", handler.CheckDuplicateURL)
			articles.GET("/:id", handler.GetArticle)
			articles.PUT("/:id", handler.UpdateArticleAnnotations)
			articles.DELETE("/:id", handler.DeleteArticle)
			articles.PUT("/:id/title", handler.RenameArticle)
			articles.PUT("/:id/metadata", handler.UpdateArticleMetadata)
			articles.PUT("/:id/project", handler.AssignArticleProject)
			articles.PUT("/:id/outlet", handler.AssignArticleOutlet)
			articles.POST("/:id/retranslate", handler.RetranslateArticle)
			articles.GET("/:id/citation", handler.GetArticleCitation)
			articles.GET("/:id/export", handler.ExportArticle)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", handler.ListProjects)
			projects.POST("", handler.CreateProject)
			projects.GET("/:id", handler.GetProject)
			projects.PUT("/:id", handler.UpdateProject)
			projects.DELETE("/:id", handler.DeleteProject)
			projects.GET("/:id/articles", handler.ListProjectArticles)
			projects.GET("/:id/timeline", handler.GetProjectTimeline)
			projects.GET("/:id/entities", handler.GetProjectEntities)
			projects.GET("/:id/export", handler.ExportProject)
		}

		outlets := api.Group("/outlets")
		{
			outlets.GET("", handler.ListOutlets)
			outlets.POST("", handler.CreateOutlet)
			outlets.PUT("/:id", handler.UpdateOutlet)
			outlets.DELETE("/:id", handler.DeleteOutlet)
		}
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "SinoDesk",
			"version":     handler.version,
			"description": "Chinese news research desk: translation, summarization, and cross-article entity analysis",
			"endpoints": map[string]string{
				"translate":        "/api/v1/articles (POST)",
				"articles":         "/api/v1/articles",
				"projects":         "/api/v1/projects",
				"project-entities": "/api/v1/projects/<id>/entities",
				"project-timeline": "/api/v1/projects/<id>/timeline",
				"outlets":          "/api/v1/outlets",
				"health":           "/health",
				"stats":            "/stats",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
