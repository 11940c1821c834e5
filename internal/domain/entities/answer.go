package entities

import "time"

// Answer is a confirmed, durable submission. At most one answer exists per
// (user, question) pair; the first submission wins. IsCorrect starts false
// and is only flipped by grading.
type Answer struct {
	ID         int64
	UserID     int64
	QuestionID int64
	Value      string
	IsCorrect  bool
	CreatedAt  time.Time
}

// AnswerWithQuestion joins an answer with its owning question, as needed by
// grading and result views.
type AnswerWithQuestion struct {
	Answer
	Question Question
}
