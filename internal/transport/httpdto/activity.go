package httpdto

import (
	"time"

	"driftchat/internal/domain/activity"
	"driftchat/internal/domain/user"

	"github.com/google/uuid"
)

type ActivityResponse struct {
	ConversationID uuid.UUID         `json:"conversation_id"`
	OtherParty     ProfileResponse   `json:"other_party"`
	LastMessage    *SnapshotResponse `json:"last_message,omitempty"`
	UnreadCount    int               `json:"unread_count"`
	LastActivityAt time.Time         `json:"last_activity_at"`
}

type MarkReadResponse struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	UnreadCount    int       `json:"unread_count"`
}

func FromActivity(e activity.RecentActivity, other user.Profile) ActivityResponse {
	return ActivityResponse{
		ConversationID: e.ConversationID,
		OtherParty:     FromProfile(other),
		LastMessage:    FromSnapshot(e.LastMessage),
		UnreadCount:    e.UnreadCount,
		LastActivityAt: e.LastActivityAt,
	}
}
