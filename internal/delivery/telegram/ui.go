package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
)

// buildPanelKeyboard builds the panel's action row for the set's status.
// DRAFT and CLOSED panels carry no buttons.
func buildPanelKeyboard(set *entities.QuestionSet) *tgbotapi.InlineKeyboardMarkup {
	switch set.Status {
	case entities.StatusOpen:
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✍️ Start / Continue", buildStartCallback(set.ID)),
			),
		)
		return &kb
	case entities.StatusRevealed:
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🏆 My result", buildResultCallback(set.ID)),
			),
		)
		return &kb
	}
	return nil
}

// buildAnswerKeyboard builds the inline keyboard for a question. BOOLEAN gets
// yes/no, CHOICE one button per option. TEXT questions have no keyboard; the
// reply arrives as a plain message.
func buildAnswerKeyboard(q *entities.Question) *tgbotapi.InlineKeyboardMarkup {
	switch q.Kind {
	case entities.InputBoolean:
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Yes", buildAnswerCallback(q.SetID, q.ID, answerYes)),
				tgbotapi.NewInlineKeyboardButtonData("❌ No", buildAnswerCallback(q.SetID, q.ID, answerNo)),
			),
		)
		return &kb
	case entities.InputChoice:
		var rows [][]tgbotapi.InlineKeyboardButton
		for i, option := range q.Options {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(option, buildOptionCallback(q.SetID, q.ID, i)),
			))
		}
		kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
		return &kb
	}
	return nil
}

// buildSummaryKeyboard builds the confirm/edit row under the review message.
func buildSummaryKeyboard(setID int64) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", buildConfirmCallback(setID)),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", buildEditCallback(setID)),
		),
	)
	return &kb
}
