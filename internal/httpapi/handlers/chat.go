package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docsift/docsift/internal/common"
)

type chatReq struct {
	Prompt string `json:"prompt"`
}

// Chat answers a free-text prompt. Failures after the model was called
// still carry the history record they produced; a failed insert instead
// carries the output that could not be recorded.
func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json body"})
		return
	}

	res, err := h.Svc.Chat(c.Request.Context(), req.Prompt)
	if err != nil {
		body := gin.H{"error": common.Message(err)}
		if res != nil {
			if res.Item != nil {
				body["historyItem"] = res.Item
			}
			if common.IsKind(err, common.KindPersistence) {
				body["output"] = res.Output
			}
		}
		c.JSON(common.HTTPStatus(err), body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"output":      res.Output,
		"historyItem": res.Item,
	})
}
