package httpapi

import (
	"time"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
)

type setDTO struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Type            string        `json:"type"`
	Status          string        `json:"status"`
	RewardChannelID int64         `json:"reward_channel_id"`
	CreatedAt       time.Time     `json:"created_at"`
	Questions       []questionDTO `json:"questions,omitempty"`
}

type questionDTO struct {
	ID            int64    `json:"id"`
	SetID         int64    `json:"set_id"`
	Position      int      `json:"position"`
	Prompt        string   `json:"prompt"`
	Kind          string   `json:"kind"`
	Answers       []string `json:"answers"`
	Options       []string `json:"options"`
	Reward        int      `json:"reward"`
	ManualGrading bool     `json:"manual_grading"`
	IsActive      bool     `json:"is_active"`
}

type answerDTO struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	QuestionID int64     `json:"question_id"`
	Position   int       `json:"position"`
	Prompt     string    `json:"prompt"`
	Value      string    `json:"value"`
	IsCorrect  bool      `json:"is_correct"`
	Manual     bool      `json:"manual_grading"`
	CreatedAt  time.Time `json:"created_at"`
}

type userDTO struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Souls     int64     `json:"souls"`
	CreatedAt time.Time `json:"created_at"`
}

func toSetDTO(set *entities.QuestionSet, questions []*entities.Question) setDTO {
	dto := setDTO{
		ID:              set.ID,
		Title:           set.Title,
		Description:     set.Description,
		Type:            string(set.Type),
		Status:          string(set.Status),
		RewardChannelID: set.RewardChannelID,
		CreatedAt:       set.CreatedAt,
	}
	for _, q := range questions {
		dto.Questions = append(dto.Questions, toQuestionDTO(q))
	}
	return dto
}

func toQuestionDTO(q *entities.Question) questionDTO {
	return questionDTO{
		ID:            q.ID,
		SetID:         q.SetID,
		Position:      q.Position,
		Prompt:        q.Prompt,
		Kind:          string(q.Kind),
		Answers:       q.Answers,
		Options:       q.Options,
		Reward:        q.Reward,
		ManualGrading: q.ManualGrading,
		IsActive:      q.IsActive,
	}
}

func toAnswerDTO(a *entities.AnswerWithQuestion) answerDTO {
	return answerDTO{
		ID:         a.ID,
		UserID:     a.UserID,
		QuestionID: a.QuestionID,
		Position:   a.Question.Position,
		Prompt:     a.Question.Prompt,
		Value:      a.Value,
		IsCorrect:  a.IsCorrect,
		Manual:     a.Question.ManualGrading,
		CreatedAt:  a.CreatedAt,
	}
}

func toUserDTO(u *entities.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Username:  u.Username,
		Souls:     u.Souls,
		CreatedAt: u.CreatedAt,
	}
}
