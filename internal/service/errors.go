package service

import "errors"

var (
	// ErrSetNotFound is returned when the referenced question set does not exist.
	ErrSetNotFound = errors.New("question set not found")
	// ErrQuestionNotFound is returned when the referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAnswerNotFound is returned when the referenced answer does not exist.
	ErrAnswerNotFound = errors.New("answer not found")
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrSetClosed is returned when a play action targets a set that is not OPEN.
	ErrSetClosed = errors.New("question set is not open")
	// ErrSessionExpired is returned when no in-memory session exists for the
	// action; the user must restart from the panel.
	ErrSessionExpired = errors.New("session expired")
	// ErrEmptySession is returned when confirm is attempted before any answer
	// was collected.
	ErrEmptySession = errors.New("session has no answers")
	// ErrAlreadyPlayed is returned when the user has durable answers for the
	// set and may not start a new session.
	ErrAlreadyPlayed = errors.New("answers already submitted for this set")
)

// ValidationError carries a specific unmet condition that is surfaced to the
// admin verbatim, e.g. the current question count on an OPEN transition.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
