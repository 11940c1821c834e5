package entities

import "time"

// SetType distinguishes how a question set is presented and traversed.
type SetType string

const (
	SetTypeStandard SetType = "STANDARD" // free-form quiz, next-unanswered traversal
	SetTypeBingo    SetType = "BINGO"    // 3x3 prediction card, strict positional traversal
)

// SetStatus is the lifecycle state of a question set.
type SetStatus string

const (
	StatusDraft    SetStatus = "DRAFT"
	StatusOpen     SetStatus = "OPEN"
	StatusClosed   SetStatus = "CLOSED"
	StatusRevealed SetStatus = "REVEALED"
)

// BingoQuestionCount is the exact number of questions a BINGO set must
// contain before it may be opened.
const BingoQuestionCount = 9

// QuestionSet represents a named collection of questions with a shared
// lifecycle status. A zero RewardChannelID means no completion reward is
// configured; zero panel fields mean no panel message has been published.
type QuestionSet struct {
	ID              int64
	Title           string
	Description     string
	Type            SetType
	Status          SetStatus
	RewardChannelID int64 // channel perfect scorers are invited to
	PanelChatID     int64
	PanelMessageID  int
	CreatedAt       time.Time
}

// IsOpen reports whether the set currently accepts answers.
func (s *QuestionSet) IsOpen() bool {
	return s.Status == StatusOpen
}

// ValidStatus reports whether the given value is a known lifecycle status.
func ValidStatus(s SetStatus) bool {
	switch s {
	case StatusDraft, StatusOpen, StatusClosed, StatusRevealed:
		return true
	}
	return false
}
