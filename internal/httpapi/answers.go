package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleListAnswers returns the grading roster for a set, joined with the
// question rows so the panel can show prompts and manual-grading flags.
func (s *Server) handleListAnswers(c *gin.Context) {
	setID, ok := idParam(c)
	if !ok {
		return
	}

	rows, err := s.answers.ListBySet(c.Request.Context(), setID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]answerDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toAnswerDTO(row))
	}
	c.JSON(http.StatusOK, gin.H{"answers": out})
}

type gradeRequest struct {
	Correct *bool `json:"correct" binding:"required"`
}

func (s *Server) handleGradeAnswer(c *gin.Context) {
	answerID, ok := idParam(c)
	if !ok {
		return
	}

	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "correct is required"})
		return
	}

	delta, err := s.grader.Grade(c.Request.Context(), answerID, *req.Correct)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if delta != 0 {
		s.events.LogEvent(c.Request.Context(), "Answer regraded",
			fmt.Sprintf("answer %d, delta %+d souls", answerID, delta))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "delta": delta})
}
