package entities

import "strings"

// InputKind describes the control a question is answered with.
type InputKind string

const (
	InputBoolean InputKind = "BOOLEAN" // yes/no buttons
	InputChoice  InputKind = "CHOICE"  // one option from a fixed list
	InputText    InputKind = "TEXT"    // free text
)

// Question belongs to exactly one set and occupies a position unique within
// that set. Answers holds the accepted-answer pool for auto-grading; Options
// holds the choices presented for InputChoice questions.
type Question struct {
	ID            int64
	SetID         int64
	Position      int
	Prompt        string
	Kind          InputKind
	Answers       []string
	Options       []string
	Reward        int
	ManualGrading bool
	IsActive      bool
}

// Matches reports whether value equals any accepted answer after both sides
// are trimmed and lowercased.
func (q *Question) Matches(value string) bool {
	v := NormalizeAnswer(value)
	for _, a := range q.Answers {
		if NormalizeAnswer(a) == v {
			return true
		}
	}
	return false
}

// NormalizeAnswer trims surrounding whitespace and lowercases a submitted or
// accepted answer so that comparisons are case-insensitive.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
