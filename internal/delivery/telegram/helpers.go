package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/service"
)

func newHTMLMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return msg
}

func displayName(from *tgbotapi.User) string {
	if from.UserName != "" {
		return from.UserName
	}
	return from.FirstName
}

// playErrorText maps flow errors to a user-facing message.
func (h *Handler) playErrorText(err error) string {
	switch {
	case errors.Is(err, service.ErrSetNotFound):
		return msgSetUnavailable
	case errors.Is(err, service.ErrSetClosed):
		return msgSetClosed
	case errors.Is(err, service.ErrAlreadyPlayed):
		return msgAlreadyPlayed
	case errors.Is(err, service.ErrSessionExpired):
		return msgSessionExpired
	case errors.Is(err, service.ErrEmptySession):
		return msgEmptySession
	case errors.Is(err, service.ErrAnswerNotFound):
		return msgNoResult
	}
	return msgInternalError
}

// sendStep presents the next question, or the review summary when the walk
// is complete. TEXT questions arrive with a forced reply so the next plain
// message lands back in the flow.
func (h *Handler) sendStep(ctx context.Context, chatID, setID int64, step *service.Step) {
	if step.Done() {
		set, err := h.setService.Get(ctx, setID)
		if err != nil {
			h.logger.Error("failed to load set for summary",
				zap.Int64("set_id", setID),
				zap.Error(err),
			)
			h.sendError(chatID, msgInternalError)
			return
		}
		msg := newHTMLMessage(chatID, renderSummary(set, step.Answers))
		msg.ReplyMarkup = buildSummaryKeyboard(setID)
		h.send(msg)
		return
	}

	msg := newHTMLMessage(chatID, renderQuestion(step.Question, step.Position, step.Total))
	switch step.Question.Kind {
	case entities.InputText:
		msg.ReplyMarkup = tgbotapi.ForceReply{
			ForceReply:            true,
			InputFieldPlaceholder: "Type your answer",
			Selective:             true,
		}
	default:
		if kb := buildAnswerKeyboard(step.Question); kb != nil {
			msg.ReplyMarkup = kb
		}
	}
	h.send(msg)
}
