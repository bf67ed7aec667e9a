package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docsift/docsift/internal/extract"
	"github.com/docsift/docsift/internal/httpapi/handlers"
	"github.com/docsift/docsift/internal/httpapi/middleware"
)

func NewRouter(svc *extract.Service) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	h := handlers.NewHandler(svc)

	r.GET("/ping", h.Ping)

	api := r.Group("/api")
	api.POST("/chat", h.Chat)
	api.POST("/analyze-file", h.AnalyzeFile)
	api.GET("/history", h.ListHistory)
	api.DELETE("/history/:id", h.DeleteHistory)
	api.DELETE("/history", h.ClearHistory)
	api.GET("/commands", h.ListCommands)

	return r
}
