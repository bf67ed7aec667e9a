package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/extract"
)

// AnalyzeFile runs one uploaded file through the extraction pipeline.
// Multipart fields: "file" (required) and "command" (optional, defaults
// to the built-in extraction spec).
func (h *Handler) AnalyzeFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
		return
	}
	defer f.Close()

	res, aerr := h.Svc.AnalyzeFile(c.Request.Context(), extract.FileRequest{
		Command:   c.PostForm("command"),
		FileName:  filepath.Base(fh.Filename),
		MediaType: fh.Header.Get("Content-Type"),
		Content:   f,
	})
	if aerr != nil {
		body := gin.H{"error": common.Message(aerr)}
		if res != nil {
			if res.Item != nil {
				body["historyItem"] = res.Item
			}
			if common.IsKind(aerr, common.KindPersistence) {
				body["result"] = json.RawMessage(res.ResultJSON)
			}
		}
		c.JSON(common.HTTPStatus(aerr), body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":      json.RawMessage(res.ResultJSON),
		"historyItem": res.Item,
	})
}
