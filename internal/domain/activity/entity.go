package activity

import (
	"time"

	"driftchat/internal/domain/conversation"

	"github.com/google/uuid"
)

// RecentActivity is one row of a user's inbox: the latest message of a
// conversation as seen by UserID, and how many of them UserID has not read.
type RecentActivity struct {
	UserID         uuid.UUID             `gorm:"type:uuid;primaryKey" json:"-"`
	ConversationID uuid.UUID             `gorm:"type:uuid;primaryKey;index" json:"conversation_id"`
	OtherPartyID   uuid.UUID             `gorm:"type:uuid;not null;index" json:"other_party_id"`
	LastMessage    conversation.Snapshot `gorm:"embedded;embeddedPrefix:last_message_" json:"last_message"`
	UnreadCount    int                   `gorm:"not null" json:"unread_count"`
	LastActivityAt time.Time             `gorm:"not null;index" json:"last_activity_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func (RecentActivity) TableName() string {
	return "recent_activities"
}
