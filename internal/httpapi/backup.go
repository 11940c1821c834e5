package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type backupAnswer struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	QuestionID int64     `json:"question_id"`
	Value      string    `json:"value"`
	IsCorrect  bool      `json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}

// handleBackup streams a full JSON export of users, sets with questions and
// every answer row, as a downloadable file.
func (s *Server) handleBackup(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := s.users.List(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	sets, err := s.sets.List(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	answers, err := s.answers.ListAll(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}

	userDump := make([]userDTO, 0, len(users))
	for _, u := range users {
		userDump = append(userDump, toUserDTO(u))
	}

	setDump := make([]setDTO, 0, len(sets))
	for _, sw := range sets {
		setDump = append(setDump, toSetDTO(sw.Set, sw.Questions))
	}

	answerDump := make([]backupAnswer, 0, len(answers))
	for _, a := range answers {
		answerDump = append(answerDump, backupAnswer{
			ID:         a.ID,
			UserID:     a.UserID,
			QuestionID: a.QuestionID,
			Value:      a.Value,
			IsCorrect:  a.IsCorrect,
			CreatedAt:  a.CreatedAt,
		})
	}

	filename := fmt.Sprintf("soulbingo-backup-%s.json", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.JSON(http.StatusOK, gin.H{
		"exported_at": time.Now().UTC(),
		"users":       userDump,
		"sets":        setDump,
		"answers":     answerDump,
	})
}
