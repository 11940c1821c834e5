package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]userDTO, 0, len(users))
	for _, u := range users {
		out = append(out, toUserDTO(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

type balanceRequest struct {
	Souls *int64 `json:"souls" binding:"required"`
}

func (s *Server) handleSetBalance(c *gin.Context) {
	userID, ok := idParam(c)
	if !ok {
		return
	}

	var req balanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "souls is required"})
		return
	}

	if err := s.users.SetBalance(c.Request.Context(), userID, *req.Souls); err != nil {
		s.respondError(c, err)
		return
	}

	s.events.LogEvent(c.Request.Context(), "Balance adjusted",
		fmt.Sprintf("user %d set to %d souls", userID, *req.Souls))
	c.JSON(http.StatusOK, gin.H{"success": true})
}
