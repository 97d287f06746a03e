package routes

import (
	"net/http"

	"taskboard-api/internal/handlers"
	"taskboard-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Tasks     *handlers.TaskHandler
	Users     *handlers.UserHandler
	Dashboard *handlers.DashboardHandler
	Feed      *handlers.FeedHandler
}

// Setup builds the gin engine with middleware and the full API surface.
func Setup(logger *zap.Logger, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.CORS(),
	)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.GET("/dashboard", h.Dashboard.Get)

		api.GET("/tasks", h.Tasks.List)
		api.GET("/tasks/:id", h.Tasks.Get)
		api.GET("/tasks/:id/history", h.Tasks.History)
		api.POST("/tasks", h.Tasks.Create)
		api.PUT("/tasks/:id", h.Tasks.Update)
		api.DELETE("/tasks/:id", h.Tasks.Delete)

		api.GET("/users", h.Users.List)
		api.GET("/users/:id", h.Users.Get)
		api.POST("/users", h.Users.Create)
		api.PUT("/users/:id", h.Users.Update)
		api.DELETE("/users/:id", h.Users.Delete)

		api.GET("/ws/activity", h.Feed.Serve)
	}

	return router
}
