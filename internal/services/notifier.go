package services

import (
	"driftchat/internal/domain/conversation"
	"driftchat/internal/domain/user"

	"github.com/google/uuid"
)

// Notifier pushes state changes to live connections. Implementations must not
// block and must swallow delivery failures.
type Notifier interface {
	SessionMessage(s conversation.ChatSession, m conversation.Message)
	RoomMessage(roomID uuid.UUID, m conversation.Message)
	SessionCreated(recipientID uuid.UUID, peer user.Profile, s conversation.ChatSession)
	RoomMemberJoined(roomID, userID uuid.UUID)
	RoomMemberLeft(roomID, userID uuid.UUID)
}

type nopNotifier struct{}

func (nopNotifier) SessionMessage(conversation.ChatSession, conversation.Message) {}
func (nopNotifier) RoomMessage(uuid.UUID, conversation.Message) {}
func (nopNotifier) SessionCreated(uuid.UUID, user.Profile, conversation.ChatSession) {}
func (nopNotifier) RoomMemberJoined(uuid.UUID, uuid.UUID) {}
func (nopNotifier) RoomMemberLeft(uuid.UUID, uuid.UUID) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
