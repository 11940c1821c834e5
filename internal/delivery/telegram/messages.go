// messages.go contains message templates for Telegram.

package telegram

const (
	msgWelcome = "Welcome to the <b>Soul Bingo</b> bot!\n\n" +
		"Answer prediction sets posted in the community channel, collect souls for " +
		"correct guesses and climb the leaderboard.\n\n" +
		"/balance — check your soul balance"

	msgUnknownCommand = "Unknown command.\n\n/balance — check your soul balance"

	msgInternalError    = "Something went wrong. Try again later."
	msgSetUnavailable   = "This event is not available right now."
	msgSetClosed        = "This event is no longer accepting answers."
	msgAlreadyPlayed    = "You have already submitted your card for this event."
	msgSessionExpired   = "Your session expired. Tap the start button on the panel to begin again."
	msgEmptySession     = "There is nothing to confirm yet. Answer the questions first."
	msgNoResult         = "No play record found for this event."
	msgStartPrivateChat = "Open a private chat with the bot first, then tap the button again."

	msgCardSaved = "✅ Your card is in!\n\nYour predictions are locked:\n%s\nWait for the reveal!"

	msgAdminOnly       = "This command is for admins."
	msgUsePanel        = "Usage: /bingo_panel <set id>"
	msgUseStatus       = "Usage: /bingo_status <set id> <DRAFT|OPEN|CLOSED|REVEALED>"
	msgPanelPublished  = "Panel published for set %d."
	msgStatusChanged   = "Set %d is now %s."
	msgRewardDelivered = "🏆 Perfect score on <b>%s</b>!\n\nYour single-use invite to the winners' channel:\n%s"
)
