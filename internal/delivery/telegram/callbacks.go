package telegram

import (
	"context"
	"errors"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	cd := decodeCallback(cb.Data)
	if cd.Action != actionBingo || len(cd.Params) < 2 {
		h.answerCallback(cb.ID, "")
		return
	}

	setID, err := strconv.ParseInt(cd.Params[1], 10, 64)
	if err != nil {
		h.logger.Warn("invalid set id in callback", zap.String("data", cb.Data))
		h.answerCallback(cb.ID, "")
		return
	}

	switch cd.Params[0] {
	case bingoStart:
		h.handleStartCallback(ctx, cb, setID)
	case bingoAnswer:
		h.handleAnswerCallback(ctx, cb, setID, cd.Params)
	case bingoOption:
		h.handleOptionCallback(ctx, cb, setID, cd.Params)
	case bingoConfirm:
		h.handleConfirmCallback(ctx, cb, setID)
	case bingoEdit:
		h.handleEditCallback(ctx, cb, setID)
	case bingoResult:
		h.handleResultCallback(ctx, cb, setID)
	default:
		h.answerCallback(cb.ID, "")
	}
}

// handleStartCallback starts or resumes the flow. Questions go to the user's
// private chat so cards stay secret even when the panel hangs in a group.
func (h *Handler) handleStartCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, setID int64) {
	userID := cb.From.ID

	if err := h.userService.Ensure(ctx, userID, displayName(cb.From)); err != nil {
		h.logger.Error("failed to ensure user", zap.Int64("user_id", userID), zap.Error(err))
	}

	step, err := h.playService.Start(ctx, userID, setID)
	if err != nil {
		h.alertCallback(cb.ID, h.playErrorText(err))
		return
	}

	h.answerCallback(cb.ID, "Check your private chat with the bot!")
	h.sendStep(ctx, userID, setID, step)
}

func (h *Handler) handleAnswerCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, setID int64, params []string) {
	if len(params) != 4 {
		h.answerCallback(cb.ID, "")
		return
	}
	questionID, err := strconv.ParseInt(params[2], 10, 64)
	if err != nil {
		h.answerCallback(cb.ID, "")
		return
	}

	value := "Yes"
	if params[3] == answerNo {
		value = "No"
	}

	step, err := h.playService.Submit(ctx, cb.From.ID, setID, questionID, value)
	if err != nil {
		h.alertCallback(cb.ID, h.playErrorText(err))
		return
	}

	h.answerCallback(cb.ID, "")
	h.sendStep(ctx, cb.From.ID, setID, step)
}

func (h *Handler) handleOptionCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, setID int64, params []string) {
	if len(params) != 4 {
		h.answerCallback(cb.ID, "")
		return
	}
	questionID, err1 := strconv.ParseInt(params[2], 10, 64)
	index, err2 := strconv.Atoi(params[3])
	if err1 != nil || err2 != nil || index < 0 {
		h.answerCallback(cb.ID, "")
		return
	}

	q, err := h.questionService.GetByID(ctx, questionID)
	if err != nil || index >= len(q.Options) {
		h.alertCallback(cb.ID, msgSetUnavailable)
		return
	}

	step, err := h.playService.Submit(ctx, cb.From.ID, setID, questionID, q.Options[index])
	if err != nil {
		h.alertCallback(cb.ID, h.playErrorText(err))
		return
	}

	h.answerCallback(cb.ID, "")
	h.sendStep(ctx, cb.From.ID, setID, step)
}

func (h *Handler) handleConfirmCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, setID int64) {
	userID := cb.From.ID
	username := displayName(cb.From)

	answers, err := h.playService.Confirm(ctx, userID, username, setID)
	if err != nil {
		h.alertCallback(cb.ID, h.playErrorText(err))
		return
	}

	set, err := h.setService.Get(ctx, setID)
	if err != nil {
		h.logger.Error("failed to load set after confirm", zap.Int64("set_id", setID), zap.Error(err))
		h.alertCallback(cb.ID, msgInternalError)
		return
	}

	h.answerCallback(cb.ID, "Card locked in!")
	h.send(newHTMLMessage(userID, formatCardSaved(answers)))
	h.cards.PublishCard(ctx, username, set, answers)
}

func (h *Handler) handleEditCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, setID int64) {
	step, err := h.playService.Reset(ctx, cb.From.ID, setID)
	if err != nil {
		h.alertCallback(cb.ID, h.playErrorText(err))
		return
	}

	h.answerCallback(cb.ID, "")
	h.sendStep(ctx, cb.From.ID, setID, step)
}

func (h *Handler) handleResultCallback(ctx context.Context, cb *tgbotapi.CallbackQuery, setID int64) {
	summary, err := h.playService.Result(ctx, cb.From.ID, setID)
	if err != nil {
		if errors.Is(err, service.ErrAnswerNotFound) {
			h.alertCallback(cb.ID, msgNoResult)
			return
		}
		h.alertCallback(cb.ID, h.playErrorText(err))
		return
	}

	h.answerCallback(cb.ID, "Check your private chat with the bot!")
	h.send(newHTMLMessage(cb.From.ID, renderResult(summary)))
}

// answerCallback removes the user's "clock" on the tapped button.
func (h *Handler) answerCallback(id, text string) {
	answer := tgbotapi.NewCallback(id, text)
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}

// alertCallback shows a popup alert instead of a toast.
func (h *Handler) alertCallback(id, text string) {
	answer := tgbotapi.NewCallbackWithAlert(id, text)
	if _, err := h.bot.Request(answer); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}
