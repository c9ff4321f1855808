package websocket

import (
	"driftchat/internal/domain/conversation"
	"driftchat/internal/domain/user"
	"driftchat/internal/events"
	"driftchat/internal/services"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Dispatcher turns store changes into pushes on the hub. Every push is
// attempted once; failures are logged and dropped.
type Dispatcher struct {
	hub    *Hub
	logger *Logger
}

var _ services.Notifier = (*Dispatcher)(nil)

func NewDispatcher(hub *Hub) *Dispatcher {
	return &Dispatcher{hub: hub, logger: hub.logger}
}

// SessionMessage delivers on the session channel and again directly to the
// other participant's handles, since channel subscriptions can lag presence.
// Clients drop the second copy by message id.
func (d *Dispatcher) SessionMessage(s conversation.ChatSession, m conversation.Message) {
	payload, ok := d.encode(events.EventTypeMessageNew, events.MessageNew{
		ConversationID:   s.ID,
		ConversationKind: conversation.KindSession,
		Message:          m,
	})
	if !ok {
		return
	}
	d.hub.Broadcast(events.SessionChannel(s.ID), payload)
	d.hub.SendToUser(s.OtherParticipant(m.SenderID), payload)
}

// RoomMessage delivers on the room channel only.
func (d *Dispatcher) RoomMessage(roomID uuid.UUID, m conversation.Message) {
	payload, ok := d.encode(events.EventTypeMessageNew, events.MessageNew{
		ConversationID:   roomID,
		ConversationKind: conversation.KindRoom,
		Message:          m,
	})
	if !ok {
		return
	}
	d.hub.Broadcast(events.RoomChannel(roomID), payload)
}

// SessionCreated tells recipientID that peer opened s with them. Offline
// recipients find the session in their list on next load.
func (d *Dispatcher) SessionCreated(recipientID uuid.UUID, peer user.Profile, s conversation.ChatSession) {
	if !d.hub.IsOnline(recipientID) {
		return
	}
	payload, ok := d.encode(events.EventTypeSessionCreated, events.SessionCreated{
		User:    peer,
		Session: events.NewSessionInfo(s),
	})
	if !ok {
		return
	}
	d.hub.SendToUser(recipientID, payload)
}

func (d *Dispatcher) RoomMemberJoined(roomID, userID uuid.UUID) {
	channel := events.RoomChannel(roomID)
	d.hub.JoinUser(userID, channel)
	payload, ok := d.encode(events.EventTypeRoomMemberJoined, events.RoomMember{RoomID: roomID, UserID: userID})
	if !ok {
		return
	}
	d.hub.Broadcast(channel, payload)
}

func (d *Dispatcher) RoomMemberLeft(roomID, userID uuid.UUID) {
	channel := events.RoomChannel(roomID)
	payload, ok := d.encode(events.EventTypeRoomMemberLeft, events.RoomMember{RoomID: roomID, UserID: userID})
	if ok {
		d.hub.Broadcast(channel, payload)
	}
	d.hub.LeaveUser(userID, channel)
}

func (d *Dispatcher) encode(eventType string, payload interface{}) ([]byte, bool) {
	data, err := events.Encode(eventType, payload)
	if err != nil {
		d.logger.logger.Error("encode push", zap.String("event", eventType), zap.Error(err))
		return nil, false
	}
	return data, true
}
