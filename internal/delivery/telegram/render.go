package telegram

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/service"
	"github.com/phantomorder/soulbingo-bot/internal/storage"
)

const gridBorder = "+----------+----------+----------+\n"

// renderBingoGrid draws the collected answers as a 3x3 card in a monospace
// block, one cell per question in position order.
func renderBingoGrid(answers []storage.SessionAnswer) string {
	sorted := make([]storage.SessionAnswer, len(answers))
	copy(sorted, answers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	var b strings.Builder
	b.WriteString("<pre>\n")
	b.WriteString(gridBorder)

	row := ""
	for i, a := range sorted {
		cell := fmt.Sprintf(" Q%d:%s ", a.Position, abbrevAnswer(a.Value))
		for len(cell) < 10 {
			cell += " "
		}
		row += "|" + cell

		if (i+1)%3 == 0 {
			b.WriteString(row + "|\n")
			b.WriteString(gridBorder)
			row = ""
		}
	}
	if row != "" {
		for len(row) < 33 {
			row += "|          "
		}
		b.WriteString(row + "|\n")
		b.WriteString(gridBorder)
	}

	b.WriteString("</pre>")
	return b.String()
}

// abbrevAnswer shortens an answer value to fit a grid cell.
func abbrevAnswer(value string) string {
	v := strings.TrimSpace(value)
	switch {
	case strings.EqualFold(v, "Yes"):
		return "YES"
	case strings.EqualFold(v, "No"):
		return "NO "
	}

	runes := []rune(strings.ToUpper(v))
	if len(runes) > 5 {
		runes = runes[:5]
	}
	return html.EscapeString(string(runes))
}

// formatCardSaved formats the confirmation message with the locked-in card.
func formatCardSaved(answers []storage.SessionAnswer) string {
	return fmt.Sprintf(msgCardSaved, renderBingoGrid(answers))
}

// renderQuestion formats a single question prompt for the step message.
func renderQuestion(q *entities.Question, position, total int) string {
	return fmt.Sprintf("<b>Question %d/%d</b>\n\n%s", position, total, html.EscapeString(q.Prompt))
}

// renderSummary formats the pre-confirmation overview of collected answers.
func renderSummary(set *entities.QuestionSet, answers []storage.SessionAnswer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> — review your card\n\n", html.EscapeString(set.Title))

	if set.Type == entities.SetTypeBingo {
		b.WriteString(renderBingoGrid(answers))
		b.WriteString("\n")
	}
	for _, a := range answers {
		fmt.Fprintf(&b, "Q%d. %s — <b>%s</b>\n",
			a.Position, html.EscapeString(a.Prompt), html.EscapeString(a.Value))
	}
	b.WriteString("\nConfirm to lock your answers in, or edit to start over.")

	return b.String()
}

// renderPanel formats the public panel message for a set's current status.
func renderPanel(set *entities.QuestionSet, questions []*entities.Question) string {
	typeText := "📝 Standard Quiz"
	if set.Type == entities.SetTypeBingo {
		typeText = "🎯 Bingo Prediction"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📜 <b>%s</b>\n\n", html.EscapeString(set.Title))
	if set.Description != "" {
		b.WriteString(html.EscapeString(set.Description))
		b.WriteString("\n\n")
	}

	switch set.Status {
	case entities.StatusOpen:
		fmt.Fprintf(&b, "✨ <b>The event is live!</b> (%s)\n", typeText)
		fmt.Fprintf(&b, "Answer %d questions to build your prediction card.\n\n", len(questions))
		b.WriteString("<i>Tap the button below to start. If you close the chat you can pick up where you left off.</i>\n\n")
		b.WriteString("🔴 Think before you answer!")
	case entities.StatusClosed:
		b.WriteString("⛔ <b>Answers are closed.</b>\nThe reveal is coming soon!")
	case entities.StatusRevealed:
		b.WriteString("🎉 <b>The results are in!</b>\n\n")
		for _, q := range questions {
			answer := ""
			if len(q.Answers) > 0 {
				answer = q.Answers[0]
			}
			fmt.Fprintf(&b, "<b>Q%d.</b> %s\nAnswer: <b>%s</b>\n\n",
				q.Position, html.EscapeString(q.Prompt), html.EscapeString(displayAnswer(answer)))
		}
		if set.RewardChannelID != 0 {
			b.WriteString("🏆 <b>Special Reward:</b> everyone with a perfect card gets an invite to the winners' channel.")
		}
	default:
		b.WriteString("⏳ The event is not ready yet.")
	}

	return strings.TrimRight(b.String(), "\n")
}

// displayAnswer decorates yes/no answer keys.
func displayAnswer(answer string) string {
	switch {
	case strings.EqualFold(answer, "Yes"):
		return "✅ YES"
	case strings.EqualFold(answer, "No"):
		return "❌ NO"
	}
	return answer
}

// renderResult formats a user's personal score view.
func renderResult(summary *service.ResultSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏆 <b>%s</b> — your result\n\n", html.EscapeString(summary.Set.Title))

	for _, e := range summary.Entries {
		mark := "❌"
		if e.Correct {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s Q%d. %s — <b>%s</b>\n",
			mark, e.Position, html.EscapeString(e.Prompt), html.EscapeString(e.Value))
	}

	fmt.Fprintf(&b, "\nCorrect: <b>%d/%d</b>\nSouls earned: <b>%d</b>", summary.CorrectCount, summary.Total, summary.Score)
	if summary.Perfect {
		b.WriteString("\n\n🎉 Perfect card! Check your messages for the winners' channel invite.")
	}

	return b.String()
}

// renderLeaderboard formats the periodic top-balances message.
func renderLeaderboard(users []*entities.User) string {
	var b strings.Builder
	b.WriteString("🏆 <b>Soul Leaderboard</b>\n\n")

	if len(users) == 0 {
		b.WriteString("No souls collected yet.")
		return b.String()
	}

	medals := []string{"🥇", "🥈", "🥉"}
	for i, u := range users {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		name := u.Username
		if name == "" {
			name = fmt.Sprintf("user %d", u.ID)
		}
		fmt.Fprintf(&b, "%s %s — <b>%d</b> souls\n", rank, html.EscapeString(name), u.Souls)
	}

	return b.String()
}
