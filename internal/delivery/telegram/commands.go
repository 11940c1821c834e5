package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/service"
)

func (h *Handler) balanceHandler(userID int64) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		souls, err := h.userService.Balance(ctx, userID)
		if err != nil {
			return fmt.Errorf("get balance: %w", err)
		}

		h.send(newHTMLMessage(chatID, fmt.Sprintf("💰 You have <b>%d</b> souls.", souls)))
		return nil
	}
}

// handlePanelCommand publishes (or republishes) a set's panel message into
// the chat the command was issued in. Admin only.
func (h *Handler) handlePanelCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !h.cfg.Telegram.IsAdmin(msg.From.ID) {
		h.sendError(chatID, msgAdminOnly)
		return
	}

	setID, err := strconv.ParseInt(strings.TrimSpace(msg.CommandArguments()), 10, 64)
	if err != nil {
		h.sendError(chatID, msgUsePanel)
		return
	}

	set, err := h.setService.Get(ctx, setID)
	if err != nil {
		if errors.Is(err, service.ErrSetNotFound) {
			h.sendError(chatID, msgSetUnavailable)
			return
		}
		h.logger.Error("failed to load set", zap.Int64("set_id", setID), zap.Error(err))
		h.sendError(chatID, msgInternalError)
		return
	}

	messageID, err := h.panels.PublishPanel(ctx, chatID, set)
	if err != nil {
		h.logger.Error("failed to publish panel", zap.Int64("set_id", setID), zap.Error(err))
		h.sendError(chatID, msgInternalError)
		return
	}

	if err := h.setService.AttachPanel(ctx, setID, chatID, messageID); err != nil {
		h.logger.Error("failed to attach panel", zap.Int64("set_id", setID), zap.Error(err))
	}

	h.send(newHTMLMessage(chatID, fmt.Sprintf(msgPanelPublished, setID)))
}

// handleStatusCommand transitions a set's lifecycle status. Admin only.
func (h *Handler) handleStatusCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !h.cfg.Telegram.IsAdmin(msg.From.ID) {
		h.sendError(chatID, msgAdminOnly)
		return
	}

	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		h.sendError(chatID, msgUseStatus)
		return
	}

	setID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.sendError(chatID, msgUseStatus)
		return
	}
	to := entities.SetStatus(strings.ToUpper(args[1]))

	set, report, err := h.setService.Transition(ctx, setID, to)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			h.sendError(chatID, verr.Reason)
		case errors.Is(err, service.ErrSetNotFound):
			h.sendError(chatID, msgSetUnavailable)
		default:
			h.logger.Error("failed to change status",
				zap.Int64("set_id", setID),
				zap.String("to", string(to)),
				zap.Error(err),
			)
			h.sendError(chatID, msgInternalError)
		}
		return
	}

	text := fmt.Sprintf(msgStatusChanged, set.ID, set.Status)
	if report != nil {
		text += fmt.Sprintf("\nGraded %d answers, %d correct, %d perfect cards.",
			report.Graded, report.Correct, len(report.PerfectUsers))
	}
	h.send(newHTMLMessage(chatID, text))
}
