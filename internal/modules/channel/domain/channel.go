package domain

import (
	"strconv"
	"time"
)

// Channel is a chat the bot is a member of
type Channel struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Kind      ChatKind  `json:"kind"`
	AddedBy   int64     `json:"added_by"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName prefers the title, then @username, then the numeric id.
func (c *Channel) DisplayName() string {
	switch {
	case c.Title != "":
		return c.Title
	case c.Username != "":
		return "@" + c.Username
	default:
		return strconv.FormatInt(c.ID, 10)
	}
}

// Ownership links a channel to the user who registered it. A channel has at most one owner.
type Ownership struct {
	ChannelID int64     `json:"channel_id" gorm:"primaryKey;autoIncrement:false"`
	UserID    int64     `json:"user_id" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
