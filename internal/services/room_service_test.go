package services

import (
	"context"
	"testing"

	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomService_JoinLeaveIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	room := f.room(t, "LFG Matchmaking")

	require.NoError(t, f.rooms.Join(ctx, room, a))
	require.NoError(t, f.rooms.Join(ctx, room, a))
	assert.Len(t, f.notifier.joined, 1)

	summary, err := f.rooms.Get(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.ParticipantCount)

	members, err := f.rooms.Participants(ctx, room)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "alice", members[0].Handle)

	ids, err := f.rooms.RoomIDsForUser(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{room}, ids)

	member, err := f.rooms.IsMember(ctx, room, a)
	require.NoError(t, err)
	assert.True(t, member)

	require.NoError(t, f.rooms.Leave(ctx, room, a))
	require.NoError(t, f.rooms.Leave(ctx, room, a))
	member, err = f.rooms.IsMember(ctx, room, a)
	require.NoError(t, err)
	assert.False(t, member)
	assert.Len(t, f.notifier.left, 1)

	assert.ErrorIs(t, f.rooms.Join(ctx, uuid.New(), a), driftchat_errors.ErrNotFound)
	assert.ErrorIs(t, f.rooms.Leave(ctx, uuid.New(), a), driftchat_errors.ErrNotFound)
}

func TestRoomService_SendMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	c := f.user(t, "carol")
	room := f.room(t, "Tabletop Tavern")
	require.NoError(t, f.rooms.Join(ctx, room, a))
	require.NoError(t, f.rooms.Join(ctx, room, b))

	m, err := f.rooms.SendMessage(ctx, room, a, "  hello room  ")
	require.NoError(t, err)
	assert.Equal(t, "hello room", m.Text)

	summary, err := f.rooms.Get(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, m.ID, summary.LastMessage.ID)

	_, err = f.rooms.SendMessage(ctx, room, a, " ")
	assert.ErrorIs(t, err, driftchat_errors.ErrValidation)
	_, err = f.rooms.SendMessage(ctx, room, c, "hi")
	assert.ErrorIs(t, err, driftchat_errors.ErrForbidden)
	_, err = f.rooms.SendMessage(ctx, uuid.New(), a, "hi")
	assert.ErrorIs(t, err, driftchat_errors.ErrNotFound)

	log, err := f.rooms.Messages(ctx, room, b, 0, 0)
	require.NoError(t, err)
	require.Len(t, log, 1)
	_, err = f.rooms.Messages(ctx, room, c, 0, 0)
	assert.ErrorIs(t, err, driftchat_errors.ErrForbidden)

	assert.Len(t, f.notifier.roomMsgs, 1)

	// Room messages never show up in anyone's inbox.
	inbox, err := f.activity.List(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, inbox)
}

func TestRoomService_ListByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.room(t, "PC & Console Gamers")

	all, err := f.rooms.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	gaming, err := f.rooms.List(ctx, "gaming")
	require.NoError(t, err)
	assert.Len(t, gaming, 1)

	music, err := f.rooms.List(ctx, "Music")
	require.NoError(t, err)
	assert.Empty(t, music)

	_, err = f.rooms.List(ctx, "Sports")
	assert.ErrorIs(t, err, driftchat_errors.ErrValidation)
}
