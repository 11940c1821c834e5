package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/config"
	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres/repository"
	"github.com/phantomorder/soulbingo-bot/internal/storage"
)

const keyLeaderboardMessageID = "leaderboard_message_id"

// ConfigStore persists small key/value state across restarts, like the
// leaderboard message ID.
type ConfigStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Notifier is the outbound side of the bot: panel messages, completion
// rewards, the channel leaderboard, card echoes and the event log. It backs
// the service layer's notifier contracts.
type Notifier struct {
	bot       *tgbotapi.BotAPI
	questions QuestionService
	kv        ConfigStore
	telegram  config.Telegram
	logger    *zap.Logger
}

func NewNotifier(
	bot *tgbotapi.BotAPI,
	questions QuestionService,
	kv ConfigStore,
	telegram config.Telegram,
	logger *zap.Logger,
) *Notifier {
	return &Notifier{
		bot:       bot,
		questions: questions,
		kv:        kv,
		telegram:  telegram,
		logger:    logger,
	}
}

// PublishPanel posts a fresh panel message for the set and returns its
// message ID so it can be recorded for later in-place edits.
func (n *Notifier) PublishPanel(ctx context.Context, chatID int64, set *entities.QuestionSet) (int, error) {
	questions, err := n.questions.ListBySet(ctx, set.ID, true)
	if err != nil {
		return 0, fmt.Errorf("list questions: %w", err)
	}

	msg := newHTMLMessage(chatID, renderPanel(set, questions))
	if kb := buildPanelKeyboard(set); kb != nil {
		msg.ReplyMarkup = kb
	}

	sent, err := n.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send panel: %w", err)
	}

	return sent.MessageID, nil
}

// RefreshPanel re-renders the set's recorded panel message in place.
func (n *Notifier) RefreshPanel(ctx context.Context, set *entities.QuestionSet) error {
	if set.PanelMessageID == 0 {
		return nil
	}

	questions, err := n.questions.ListBySet(ctx, set.ID, true)
	if err != nil {
		return fmt.Errorf("list questions: %w", err)
	}

	edit := tgbotapi.NewEditMessageText(set.PanelChatID, set.PanelMessageID, renderPanel(set, questions))
	edit.ParseMode = tgbotapi.ModeHTML
	edit.ReplyMarkup = buildPanelKeyboard(set)

	if _, err := n.bot.Send(edit); err != nil {
		return fmt.Errorf("edit panel: %w", err)
	}

	return nil
}

// GrantReward creates a single-use invite link to the set's winners' channel
// and delivers it to the user in a private message.
func (n *Notifier) GrantReward(ctx context.Context, userID int64, set *entities.QuestionSet) error {
	invite := tgbotapi.CreateChatInviteLinkConfig{
		ChatConfig:  tgbotapi.ChatConfig{ChatID: set.RewardChannelID},
		MemberLimit: 1,
	}

	resp, err := n.bot.Request(invite)
	if err != nil {
		return fmt.Errorf("create invite link: %w", err)
	}

	var link tgbotapi.ChatInviteLink
	if err := json.Unmarshal(resp.Result, &link); err != nil {
		return fmt.Errorf("decode invite link: %w", err)
	}

	msg := newHTMLMessage(userID, fmt.Sprintf(msgRewardDelivered, html.EscapeString(set.Title), link.InviteLink))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("deliver invite link: %w", err)
	}

	return nil
}

// PublishLeaderboard edits the standing leaderboard message in the configured
// channel, posting a new one when none is recorded yet.
func (n *Notifier) PublishLeaderboard(ctx context.Context, users []*entities.User) error {
	if n.telegram.LeaderboardChatID == 0 {
		return nil
	}

	text := renderLeaderboard(users)

	messageID, err := n.recordedLeaderboardMessage(ctx)
	if err != nil {
		return err
	}
	if messageID != 0 {
		edit := tgbotapi.NewEditMessageText(n.telegram.LeaderboardChatID, messageID, text)
		edit.ParseMode = tgbotapi.ModeHTML
		if _, err := n.bot.Send(edit); err == nil {
			return nil
		}
		// The recorded message may have been deleted; fall through and post
		// a new one.
	}

	msg := newHTMLMessage(n.telegram.LeaderboardChatID, text)
	sent, err := n.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("send leaderboard: %w", err)
	}

	if err := n.kv.Set(ctx, keyLeaderboardMessageID, strconv.Itoa(sent.MessageID)); err != nil {
		return fmt.Errorf("record leaderboard message: %w", err)
	}

	return nil
}

// recordedLeaderboardMessage resolves the stored leaderboard message ID. A
// missing key or an unreadable value means no message is recorded yet; any
// other store error is propagated so the refresh does not post a duplicate
// board over a transient outage.
func (n *Notifier) recordedLeaderboardMessage(ctx context.Context) (int, error) {
	raw, err := n.kv.Get(ctx, keyLeaderboardMessageID)
	if err != nil {
		if errors.Is(err, repository.ErrConfigNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("load leaderboard message id: %w", err)
	}

	messageID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, nil
	}

	return messageID, nil
}

// PublishCard echoes a confirmed card into the bingo feed channel.
func (n *Notifier) PublishCard(ctx context.Context, username string, set *entities.QuestionSet, answers []storage.SessionAnswer) {
	if n.telegram.BingoChatID == 0 {
		return
	}

	text := fmt.Sprintf("🎟️ <b>Bingo: %s</b>\nSet: %s\n%s",
		html.EscapeString(username), html.EscapeString(set.Title), renderBingoGrid(answers))

	if _, err := n.bot.Send(newHTMLMessage(n.telegram.BingoChatID, text)); err != nil {
		n.logger.Error("failed to publish card",
			zap.Int64("set_id", set.ID),
			zap.Error(err),
		)
	}
}

// LogEvent posts a line to the event log channel. Failures are logged and
// swallowed.
func (n *Notifier) LogEvent(ctx context.Context, title, body string) {
	if n.telegram.LogChatID == 0 {
		return
	}

	text := fmt.Sprintf("📋 <b>%s</b>\n%s", html.EscapeString(title), html.EscapeString(body))
	if _, err := n.bot.Send(newHTMLMessage(n.telegram.LogChatID, text)); err != nil {
		n.logger.Error("failed to log event",
			zap.String("title", title),
			zap.Error(err),
		)
	}
}
