package service

import (
	"context"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/storage"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, userID int64) (*entities.User, error)
	AddSouls(ctx context.Context, userID int64, delta int64) error
	SetSouls(ctx context.Context, userID int64, souls int64) error
	ListTop(ctx context.Context, limit int) ([]*entities.User, error)
	ListAll(ctx context.Context) ([]*entities.User, error)
}

type SetRepository interface {
	CreateWithQuestions(ctx context.Context, set *entities.QuestionSet, questions []*entities.Question) (int64, error)
	GetByID(ctx context.Context, setID int64) (*entities.QuestionSet, error)
	List(ctx context.Context) ([]*entities.QuestionSet, error)
	Update(ctx context.Context, set *entities.QuestionSet) error
	UpdateStatus(ctx context.Context, setID int64, status entities.SetStatus) error
	SetPanelMessage(ctx context.Context, setID, chatID int64, messageID int) error
	Delete(ctx context.Context, setID int64) error
}

type QuestionRepository interface {
	Create(ctx context.Context, q *entities.Question) (int64, error)
	GetByID(ctx context.Context, questionID int64) (*entities.Question, error)
	GetByPosition(ctx context.Context, setID int64, position int) (*entities.Question, error)
	ListBySet(ctx context.Context, setID int64, activeOnly bool) ([]*entities.Question, error)
	CountBySet(ctx context.Context, setID int64) (int, error)
	Update(ctx context.Context, q *entities.Question) error
	Delete(ctx context.Context, questionID int64) error
}

type AnswerRepository interface {
	Create(ctx context.Context, a *entities.Answer) error
	Exists(ctx context.Context, userID, questionID int64) (bool, error)
	HasAnyForSet(ctx context.Context, userID, setID int64) (bool, error)
	GetByID(ctx context.Context, answerID int64) (*entities.AnswerWithQuestion, error)
	ListBySet(ctx context.Context, setID int64) ([]*entities.AnswerWithQuestion, error)
	ListByUserAndSet(ctx context.Context, userID, setID int64) ([]*entities.AnswerWithQuestion, error)
	SetCorrect(ctx context.Context, answerID int64, correct bool) error
}

// SessionStore abstracts the transient per-(user, set) answer-collection
// state. Mutations are serialized by the implementation.
type SessionStore interface {
	Start(userID, setID int64) storage.Session
	Snapshot(userID, setID int64) (storage.Session, bool)
	Reset(userID, setID int64) storage.Session
	Mutate(userID, setID int64, fn func(*storage.Session)) (storage.Session, error)
	Delete(userID, setID int64)
	FindAwaitingText(userID int64) (setID, questionID int64, ok bool)
}

// RewardGranter delivers the completion reward to a perfect scorer. Failures
// are isolated per user and never abort grading.
type RewardGranter interface {
	GrantReward(ctx context.Context, userID int64, set *entities.QuestionSet) error
}

// PanelNotifier re-renders a set's published panel message after a lifecycle
// change. A failure is logged, not propagated.
type PanelNotifier interface {
	RefreshPanel(ctx context.Context, set *entities.QuestionSet) error
}

// EventNotifier posts notable actions to the event log channel. Failures are
// swallowed by the implementation.
type EventNotifier interface {
	LogEvent(ctx context.Context, title, body string)
}

// Revealer runs the grading pass for a set; satisfied by GraderService.
type Revealer interface {
	Reveal(ctx context.Context, setID int64) (*RevealReport, error)
}
