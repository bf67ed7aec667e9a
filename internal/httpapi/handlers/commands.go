package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docsift/docsift/internal/common"
)

func (h *Handler) ListCommands(c *gin.Context) {
	cmds, err := h.Svc.Commands()
	if err != nil {
		c.JSON(common.HTTPStatus(err), gin.H{"error": common.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"commands": cmds})
}
