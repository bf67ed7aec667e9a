package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docsift/docsift/internal/common"
)

func (h *Handler) ListHistory(c *gin.Context) {
	// non-numeric or missing limit falls back to the store default
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := h.Svc.History(c.Request.Context(), limit)
	if err != nil {
		c.JSON(common.HTTPStatus(err), gin.H{"error": common.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) DeleteHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	deleted, err := h.Svc.DeleteHistory(c.Request.Context(), id)
	if err != nil {
		c.JSON(common.HTTPStatus(err), gin.H{"error": common.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (h *Handler) ClearHistory(c *gin.Context) {
	if err := h.Svc.ClearHistory(c.Request.Context()); err != nil {
		c.JSON(common.HTTPStatus(err), gin.H{"error": common.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
