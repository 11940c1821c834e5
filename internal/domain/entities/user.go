package entities

import "time"

// User represents a chat platform member known to the bot.
// Users are created lazily on first interaction and never deleted.
type User struct {
	ID        int64 // Telegram user ID
	Username  string
	Souls     int64 // accumulated reward balance
	CreatedAt time.Time
}

func NewUser(id int64, username string) *User {
	return &User{
		ID:       id,
		Username: username,
	}
}
