package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetConfig(c *gin.Context) {
	values, err := s.kv.All(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": values})
}

type configRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

func (s *Server) handleSetConfig(c *gin.Context) {
	var req configRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}

	if err := s.kv.Set(c.Request.Context(), req.Key, req.Value); err != nil {
		s.respondError(c, err)
		return
	}

	s.events.LogEvent(c.Request.Context(), "Config changed",
		fmt.Sprintf("%s = %s", req.Key, req.Value))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
