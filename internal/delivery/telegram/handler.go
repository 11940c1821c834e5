package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/config"
)

type Handler struct {
	bot             *tgbotapi.BotAPI
	cfg             *config.Config
	logger          *zap.Logger
	userService     UserService
	playService     PlayService
	setService      SetService
	questionService QuestionService
	cards           CardPublisher
	panels          PanelPublisher
}

func NewHandler(
	bot *tgbotapi.BotAPI,
	cfg *config.Config,
	logger *zap.Logger,
	userService UserService,
	playService PlayService,
	setService SetService,
	questionService QuestionService,
	cards CardPublisher,
	panels PanelPublisher,
) *Handler {
	return &Handler{
		bot:             bot,
		cfg:             cfg,
		logger:          logger,
		userService:     userService,
		playService:     playService,
		setService:      setService,
		questionService: questionService,
		cards:           cards,
		panels:          panels,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.logger.Debug("callback received",
			zap.Int64("user_id", update.CallbackQuery.From.ID),
			zap.String("data", update.CallbackQuery.Data),
		)
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	from := update.Message.From
	if err := h.userService.Ensure(ctx, from.ID, displayName(from)); err != nil {
		h.logger.Error("failed to ensure user",
			zap.Int64("user_id", from.ID),
			zap.Error(err),
		)
	}

	chatID := update.Message.Chat.ID

	if update.Message.IsCommand() {
		switch update.Message.Command() {
		case "start":
			h.send(newHTMLMessage(chatID, msgWelcome))

		case "balance":
			_ = h.withErrorHandling(h.balanceHandler(from.ID))(ctx, chatID)

		case "bingo_panel":
			h.handlePanelCommand(ctx, update.Message)

		case "bingo_status":
			h.handleStatusCommand(ctx, update.Message)

		default:
			h.send(newHTMLMessage(chatID, msgUnknownCommand))
		}

		return
	}

	// A plain message in a private chat may be an answer to a free-text
	// question the user is in the middle of.
	if update.Message.Chat.IsPrivate() && update.Message.Text != "" {
		h.handleTextAnswer(ctx, update.Message)
	}
}

// handleTextAnswer routes a plain message into the answer flow when a session
// waits on a free-text question.
func (h *Handler) handleTextAnswer(ctx context.Context, msg *tgbotapi.Message) {
	setID, questionID, ok := h.playService.PendingText(msg.From.ID)
	if !ok {
		return
	}

	step, err := h.playService.Submit(ctx, msg.From.ID, setID, questionID, msg.Text)
	if err != nil {
		h.sendError(msg.Chat.ID, h.playErrorText(err))
		return
	}

	h.sendStep(ctx, msg.Chat.ID, setID, step)
}

func (h *Handler) sendError(chatID int64, err string) {
	h.send(newHTMLMessage(chatID, err))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
	}
}
