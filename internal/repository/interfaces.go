package repository

import (
	"context"

	"driftchat/internal/domain/activity"
	"driftchat/internal/domain/conversation"
	"driftchat/internal/domain/moderation"
	"driftchat/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
	GetFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	AddActiveChat(ctx context.Context, userID, peerID uuid.UUID) error
	RemoveActiveChat(ctx context.Context, userID, peerID uuid.UUID) error
	GetActiveChatPeerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *conversation.ChatSession) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.ChatSession, error)
	GetByPair(ctx context.Context, a, b uuid.UUID) (conversation.ChatSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetUserSessions(ctx context.Context, userID uuid.UUID) ([]conversation.ChatSession, error)
	GetPartnerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type RoomRepository interface {
	Create(ctx context.Context, r *conversation.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Room, error)
	List(ctx context.Context, category conversation.Category) ([]conversation.Room, error)
	CountParticipants(ctx context.Context, roomIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	AddParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	GetParticipantIDs(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error)
	GetUserRoomIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type MessageRepository interface {
	Append(ctx context.Context, m *conversation.Message) error
	GetConversationMessages(ctx context.Context, conversationID uuid.UUID, beforeSeq int64, limit int) ([]conversation.Message, error)
	DeleteConversationMessages(ctx context.Context, conversationID uuid.UUID) error
}

type ActivityRepository interface {
	RecordMessage(ctx context.Context, userID, conversationID, otherPartyID uuid.UUID, m conversation.Message) error
	Seed(ctx context.Context, userID, conversationID, otherPartyID uuid.UUID) error
	MarkRead(ctx context.Context, userID, conversationID uuid.UUID) error
	Remove(ctx context.Context, userID, conversationID uuid.UUID) error
	RemoveConversation(ctx context.Context, conversationID uuid.UUID) error
	RemoveBetween(ctx context.Context, a, b uuid.UUID) error
	GetUserActivity(ctx context.Context, userID uuid.UUID) ([]activity.RecentActivity, error)
}

type BlockRepository interface {
	Create(ctx context.Context, b *moderation.Block) error
	Delete(ctx context.Context, blockerID, blockedID uuid.UUID) error
	GetBlocksByBlocker(ctx context.Context, blockerID uuid.UUID) ([]moderation.Block, error)
	IsBlocked(ctx context.Context, a, b uuid.UUID) (bool, error)
	GetRelatedUserIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	CreateReport(ctx context.Context, r *moderation.Report) error
}
