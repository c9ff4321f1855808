package websocket

import (
	"context"
	"errors"

	"driftchat/internal/events"
	"driftchat/internal/repository"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
)

// ChannelAuthorizer decides whether a user may subscribe to a conversation
// channel.
type ChannelAuthorizer struct {
	sessions repository.SessionRepository
	rooms    repository.RoomRepository
}

func NewChannelAuthorizer(sessions repository.SessionRepository, rooms repository.RoomRepository) *ChannelAuthorizer {
	return &ChannelAuthorizer{sessions: sessions, rooms: rooms}
}

// CanSubscribe allows session channels to the two participants and room
// channels to current members. Anything else is denied.
func (a *ChannelAuthorizer) CanSubscribe(ctx context.Context, userID uuid.UUID, channel string) (bool, error) {
	prefix, id, err := events.ParseChannel(channel)
	if err != nil {
		return false, nil
	}

	switch prefix {
	case events.ChannelPrefixSession:
		s, err := a.sessions.GetByID(ctx, id)
		if errors.Is(err, driftchat_errors.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return s.HasParticipant(userID), nil
	case events.ChannelPrefixRoom:
		return a.rooms.IsParticipant(ctx, id, userID)
	}
	return false, nil
}
