package services

import (
	"context"
	"testing"

	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockService_BlockCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	b := f.user(t, "bob")

	sess, err := f.sessions.GetOrCreate(ctx, a, b)
	require.NoError(t, err)
	_, err = f.sessions.SendMessage(ctx, sess.ID, b, "hey", "")
	require.NoError(t, err)

	blk, err := f.blocks.Block(ctx, a, b, "spam")
	require.NoError(t, err)
	assert.Equal(t, "spam", blk.Reason)

	list, err := f.blocks.List(ctx, a)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b, list[0].Blocked.ID)
	assert.Equal(t, "spam", list[0].Block.Reason)

	for _, pair := range [][2]uuid.UUID{{a, b}, {b, a}} {
		blocked, err := f.blocks.IsBlocked(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, blocked)
	}

	for _, u := range []uuid.UUID{a, b} {
		sessions, err := f.sessions.List(ctx, u)
		require.NoError(t, err)
		assert.Empty(t, sessions)

		inbox, err := f.activity.List(ctx, u)
		require.NoError(t, err)
		assert.Empty(t, inbox)

		chats, err := f.activity.ActiveChats(ctx, u)
		require.NoError(t, err)
		assert.Empty(t, chats)
	}

	_, err = f.store.Sessions.GetByID(ctx, sess.ID)
	assert.ErrorIs(t, err, driftchat_errors.ErrNotFound)
}

func TestBlockService_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	b := f.user(t, "bob")

	_, err := f.blocks.Block(ctx, a, a, "")
	assert.ErrorIs(t, err, driftchat_errors.ErrValidation)

	_, err = f.blocks.Block(ctx, a, uuid.New(), "")
	assert.ErrorIs(t, err, driftchat_errors.ErrNotFound)

	_, err = f.blocks.Block(ctx, a, b, "")
	require.NoError(t, err)
	_, err = f.blocks.Block(ctx, a, b, "again")
	assert.ErrorIs(t, err, driftchat_errors.ErrConflict)

	// The reverse edge is a different relationship.
	_, err = f.blocks.Block(ctx, b, a, "")
	assert.NoError(t, err)

	require.NoError(t, f.blocks.Unblock(ctx, a, b))
	assert.ErrorIs(t, f.blocks.Unblock(ctx, a, b), driftchat_errors.ErrNotFound)

	blocked, err := f.blocks.IsBlocked(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, blocked, "b still blocks a")
}

func TestBlockService_Report(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	b := f.user(t, "bob")

	tests := []struct {
		name     string
		reported uuid.UUID
		reason   string
		wantErr  error
	}{
		{"blank reason", b, "   ", driftchat_errors.ErrValidation},
		{"self", a, "rude", driftchat_errors.ErrValidation},
		{"unknown", uuid.New(), "rude", driftchat_errors.ErrNotFound},
		{"ok", b, "rude", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := f.blocks.Report(ctx, a, tt.reported, tt.reason)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "rude", r.Reason)
		})
	}
}
