package services

import (
	"context"
	"math/rand/v2"
	"testing"

	"driftchat/internal/domain/conversation"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchService_NeverPicksExcludedUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me := f.user(t, "me")
	friend := f.user(t, "friend")
	blockedByMe := f.user(t, "blocked")
	blocksMe := f.user(t, "blocker")
	f.befriend(t, me, friend)
	_, err := f.blocks.Block(ctx, me, blockedByMe, "")
	require.NoError(t, err)
	_, err = f.blocks.Block(ctx, blocksMe, me, "")
	require.NoError(t, err)

	allowed := map[uuid.UUID]bool{}
	for _, h := range []string{"s1", "s2", "s3", "s4", "s5"} {
		allowed[f.user(t, h)] = true
	}

	rng := rand.New(rand.NewPCG(7, 11))
	m := NewMatchService(f.store, f.dir, f.sessions, f.notifier, false).WithPicker(rng.IntN)

	seen := map[uuid.UUID]bool{}
	for i := 0; i < 1000; i++ {
		res, err := m.FindRandom(ctx, me)
		require.NoError(t, err)
		require.True(t, allowed[res.User.ID], "matched excluded user %s", res.User.Handle)
		seen[res.User.ID] = true
	}
	assert.Len(t, seen, len(allowed))
}

func TestMatchService_ExcludesExistingSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me := f.user(t, "me")
	p1 := f.user(t, "p1")
	p2 := f.user(t, "p2")

	m := NewMatchService(f.store, f.dir, f.sessions, f.notifier, true).WithPicker(func(int) int { return 0 })

	first, err := m.FindRandom(ctx, me)
	require.NoError(t, err)
	second, err := m.FindRandom(ctx, me)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{p1, p2}, []uuid.UUID{first.User.ID, second.User.ID})

	_, err = m.FindRandom(ctx, me)
	assert.ErrorIs(t, err, driftchat_errors.ErrNoMatchAvailable)

	assert.ElementsMatch(t, []uuid.UUID{p1, p2}, f.notifier.sessionCreated)

	// Both sides get an empty inbox entry for the new session.
	inbox, err := f.activity.List(ctx, first.User.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, first.Session.ID, inbox[0].Entry.ConversationID)
	assert.Equal(t, 0, inbox[0].Entry.UnreadCount)
	assert.True(t, inbox[0].Entry.LastMessage.IsEmpty())
}

func TestMatchService_EmptyPoolCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me := f.user(t, "me")
	friend := f.user(t, "friend")
	foe := f.user(t, "foe")
	f.befriend(t, me, friend)
	_, err := f.blocks.Block(ctx, me, foe, "")
	require.NoError(t, err)

	m := NewMatchService(f.store, f.dir, f.sessions, f.notifier, true)
	_, err = m.FindRandom(ctx, me)
	assert.ErrorIs(t, err, driftchat_errors.ErrNoMatchAvailable)
	assert.Equal(t, 404, HTTPStatus(err))
	assert.Equal(t, CodeNoMatchAvailable, ErrorCode(err))

	var count int64
	require.NoError(t, f.store.DB().Model(&conversation.ChatSession{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, f.notifier.sessionCreated)
}
