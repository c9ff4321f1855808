package events

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Push events sent to clients. The names are the wire contract.
const (
	EventTypePresenceUpdate   = "presence.update"
	EventTypeMessageNew       = "message.new"
	EventTypeSessionCreated   = "session.created"
	EventTypeRoomMemberJoined = "room.memberJoined"
	EventTypeRoomMemberLeft   = "room.memberLeft"
	EventTypePong             = "pong"
	EventTypeError            = "error"
)

// Frames clients send over the socket.
const (
	FrameSessionJoin  = "session.join"
	FrameSessionLeave = "session.leave"
	FrameRoomJoin     = "room.join"
	FrameRoomLeave    = "room.leave"
	FramePing         = "ping"
)

// Conversation channel prefixes on the connection registry.
const (
	ChannelPrefixSession = "session:"
	ChannelPrefixRoom    = "room:"
)

// Redis channel prefixes.
const (
	ChannelPrefixPresence = "channel:presence:"
)

func SessionChannel(id uuid.UUID) string {
	return ChannelPrefixSession + id.String()
}

func RoomChannel(id uuid.UUID) string {
	return ChannelPrefixRoom + id.String()
}

func PresenceChannel(userID uuid.UUID) string {
	return ChannelPrefixPresence + userID.String()
}

// ParseChannel splits a registry channel name into its prefix and id.
func ParseChannel(name string) (string, uuid.UUID, error) {
	for _, prefix := range []string{ChannelPrefixSession, ChannelPrefixRoom} {
		if strings.HasPrefix(name, prefix) {
			id, err := uuid.Parse(strings.TrimPrefix(name, prefix))
			if err != nil {
				return "", uuid.Nil, fmt.Errorf("invalid channel id in %q: %w", name, err)
			}
			return prefix, id, nil
		}
	}
	return "", uuid.Nil, fmt.Errorf("unknown channel %q", name)
}
