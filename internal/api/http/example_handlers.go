package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListExamples returns the bundled example programs
func (h *Handlers) ListExamples(c *gin.Context) {
	examples := h.catalog.All()
	if tag := c.Query("tag"); tag != "" {
		examples = h.catalog.ByTag(tag)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"examples": examples,
		"count":    len(examples),
	})
}

// GetExample returns one example program by ID
func (h *Handlers) GetExample(c *gin.Context) {
	ex, ok := h.catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Example not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"example": ex,
	})
}
