package telegram

import (
	"context"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/service"
	"github.com/phantomorder/soulbingo-bot/internal/storage"
)

type UserService interface {
	Ensure(ctx context.Context, userID int64, username string) error
	Balance(ctx context.Context, userID int64) (int64, error)
}

type PlayService interface {
	Start(ctx context.Context, userID, setID int64) (*service.Step, error)
	Submit(ctx context.Context, userID, setID, questionID int64, value string) (*service.Step, error)
	Reset(ctx context.Context, userID, setID int64) (*service.Step, error)
	Confirm(ctx context.Context, userID int64, username string, setID int64) ([]storage.SessionAnswer, error)
	Result(ctx context.Context, userID, setID int64) (*service.ResultSummary, error)
	PendingText(userID int64) (setID, questionID int64, ok bool)
}

type SetService interface {
	Get(ctx context.Context, setID int64) (*entities.QuestionSet, error)
	Transition(ctx context.Context, setID int64, to entities.SetStatus) (*entities.QuestionSet, *service.RevealReport, error)
	AttachPanel(ctx context.Context, setID, chatID int64, messageID int) error
}

type QuestionService interface {
	GetByID(ctx context.Context, questionID int64) (*entities.Question, error)
	ListBySet(ctx context.Context, setID int64, activeOnly bool) ([]*entities.Question, error)
}

// CardPublisher echoes a confirmed bingo card into the event channel.
type CardPublisher interface {
	PublishCard(ctx context.Context, username string, set *entities.QuestionSet, answers []storage.SessionAnswer)
}

// PanelPublisher posts a panel message and returns its message ID.
type PanelPublisher interface {
	PublishPanel(ctx context.Context, chatID int64, set *entities.QuestionSet) (int, error)
}
