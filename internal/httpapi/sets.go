package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/service"
)

type setRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	Type            string `json:"type"`
	RewardChannelID int64  `json:"reward_channel_id"`
}

func (s *Server) handleListSets(c *gin.Context) {
	sets, err := s.sets.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]setDTO, 0, len(sets))
	for _, sw := range sets {
		out = append(out, toSetDTO(sw.Set, sw.Questions))
	}
	c.JSON(http.StatusOK, gin.H{"sets": out})
}

func (s *Server) handleCreateSet(c *gin.Context) {
	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	set, err := s.sets.Create(c.Request.Context(), service.CreateSetInput{
		Title:           req.Title,
		Description:     req.Description,
		Type:            entities.SetType(req.Type),
		RewardChannelID: req.RewardChannelID,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"set": toSetDTO(set, nil)})
}

func (s *Server) handleUpdateSet(c *gin.Context) {
	setID, ok := idParam(c)
	if !ok {
		return
	}

	var req setRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	set, err := s.sets.Update(c.Request.Context(), setID, req.Title, req.Description, req.RewardChannelID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"set": toSetDTO(set, nil)})
}

func (s *Server) handleDeleteSet(c *gin.Context) {
	setID, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.sets.Delete(c.Request.Context(), setID); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (s *Server) handleTransitionSet(c *gin.Context) {
	setID, ok := idParam(c)
	if !ok {
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	set, report, err := s.sets.Transition(c.Request.Context(), setID, entities.SetStatus(req.Status))
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := gin.H{"set": toSetDTO(set, nil)}
	if report != nil {
		resp["report"] = gin.H{
			"graded":        report.Graded,
			"correct":       report.Correct,
			"perfect_users": report.PerfectUsers,
		}
		s.events.LogEvent(c.Request.Context(), "Set revealed",
			fmt.Sprintf("set %d: %d graded, %d correct, %d perfect",
				setID, report.Graded, report.Correct, len(report.PerfectUsers)))
	}
	c.JSON(http.StatusOK, resp)
}
