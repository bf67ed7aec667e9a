package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docsift/docsift/internal/extract"
)

type Handler struct {
	Svc *extract.Service
}

func NewHandler(svc *extract.Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
