package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
)

type questionRequest struct {
	SetID         int64    `json:"set_id"`
	Position      int      `json:"position" binding:"required"`
	Prompt        string   `json:"prompt" binding:"required"`
	Kind          string   `json:"kind"`
	Answers       []string `json:"answers"`
	Options       []string `json:"options"`
	Reward        int      `json:"reward"`
	ManualGrading bool     `json:"manual_grading"`
	IsActive      *bool    `json:"is_active"`
}

func (r questionRequest) toEntity(id int64) *entities.Question {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &entities.Question{
		ID:            id,
		SetID:         r.SetID,
		Position:      r.Position,
		Prompt:        r.Prompt,
		Kind:          entities.InputKind(r.Kind),
		Answers:       r.Answers,
		Options:       r.Options,
		Reward:        r.Reward,
		ManualGrading: r.ManualGrading,
		IsActive:      active,
	}
}

func (s *Server) handleCreateQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "position and prompt are required"})
		return
	}

	q, err := s.sets.CreateQuestion(c.Request.Context(), req.toEntity(0))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"question": toQuestionDTO(q)})
}

func (s *Server) handleUpdateQuestion(c *gin.Context) {
	questionID, ok := idParam(c)
	if !ok {
		return
	}

	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "position and prompt are required"})
		return
	}

	q, err := s.sets.UpdateQuestion(c.Request.Context(), req.toEntity(questionID))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"question": toQuestionDTO(q)})
}

func (s *Server) handleDeleteQuestion(c *gin.Context) {
	questionID, ok := idParam(c)
	if !ok {
		return
	}

	if err := s.sets.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
