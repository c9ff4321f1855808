package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"driftchat/internal/domain/conversation"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSessionService_GetOrCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	b := f.user(t, "bob")

	tests := []struct {
		name    string
		self    uuid.UUID
		other   uuid.UUID
		wantErr error
	}{
		{"self", a, a, driftchat_errors.ErrValidation},
		{"unknown user", a, uuid.New(), driftchat_errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sessions.GetOrCreate(ctx, tt.self, tt.other)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := f.blocks.Block(ctx, b, a, "")
	require.NoError(t, err)
	_, err = f.sessions.GetOrCreate(ctx, a, b)
	assert.ErrorIs(t, err, driftchat_errors.ErrForbidden)
}

func TestSessionService_GetOrCreateIsOrderIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	b := f.user(t, "bob")

	s1, err := f.sessions.GetOrCreate(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, s1.LastMessage.IsEmpty())

	s2, err := f.sessions.GetOrCreate(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, s1.ID, s2.ID)

	chats, err := f.activity.ActiveChats(ctx, b)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, a, chats[0].ID)
}

func TestSessionService_ConcurrentGetOrCreateYieldsOneSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	b := f.user(t, "bob")

	// Two services do not share a singleflight group, so races between them
	// are settled by the pair index.
	other := NewSessionService(f.store, f.dir, nil)
	callers := []*SessionService{f.sessions, other}

	const n = 16
	ids := make([]uuid.UUID, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			self, peer := a, b
			if i%2 == 1 {
				self, peer = b, a
			}
			s, err := callers[i%2].GetOrCreate(ctx, self, peer)
			ids[i], errs[i] = s.ID, err
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	var count int64
	require.NoError(t, f.store.DB().Model(&conversation.ChatSession{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSessionService_SendMessageUpdatesLogAndInbox(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	b := f.user(t, "bob")

	s1, err := f.sessions.GetOrCreate(ctx, a, b)
	require.NoError(t, err)
	msgs, err := f.sessions.Messages(ctx, s1.ID, a, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	m1, err := f.sessions.SendMessage(ctx, s1.ID, a, "hi", "")
	require.NoError(t, err)
	assert.False(t, m1.CreatedAt.IsZero())
	assert.Equal(t, int64(1), m1.Seq)

	got, err := f.sessions.Get(ctx, s1.ID, b)
	require.NoError(t, err)
	assert.Equal(t, m1.ID, got.LastMessage.ID)

	msgs, err = f.sessions.Messages(ctx, s1.ID, b, 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, m1.ID, msgs[len(msgs)-1].ID)

	inbox, err := f.activity.List(ctx, b)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "hi", inbox[0].Entry.LastMessage.Text)
	assert.Equal(t, 1, inbox[0].Entry.UnreadCount)
	assert.Equal(t, a, inbox[0].OtherParty.ID)

	mine, err := f.activity.List(ctx, a)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 0, mine[0].Entry.UnreadCount)

	require.NoError(t, f.activity.MarkRead(ctx, b, s1.ID))
	inbox, err = f.activity.List(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 0, inbox[0].Entry.UnreadCount)

	_, err = f.sessions.SendMessage(ctx, s1.ID, a, "", "https://img.example/cat.png")
	require.NoError(t, err)
	inbox, err = f.activity.List(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 1, inbox[0].Entry.UnreadCount)

	assert.Len(t, f.notifier.sessionMsgs, 2)
}

func TestSessionService_SendMessageRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	c := f.user(t, "carol")
	s1, err := f.sessions.GetOrCreate(ctx, a, b)
	require.NoError(t, err)

	tests := []struct {
		name    string
		session uuid.UUID
		sender  uuid.UUID
		text    string
		image   string
		wantErr error
	}{
		{"empty", s1.ID, a, "  ", "", driftchat_errors.ErrValidation},
		{"outsider", s1.ID, c, "hello", "", driftchat_errors.ErrForbidden},
		{"missing session", uuid.New(), a, "hello", "", driftchat_errors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sessions.SendMessage(ctx, tt.session, tt.sender, tt.text, tt.image)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	got, err := f.sessions.Get(ctx, s1.ID, a)
	require.NoError(t, err)
	assert.True(t, got.LastMessage.IsEmpty())
	msgs, err := f.sessions.Messages(ctx, s1.ID, a, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Empty(t, f.notifier.sessionMsgs)
}

func TestSessionService_ListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "alice")
	b := f.user(t, "bob")
	c := f.user(t, "carol")

	ab, err := f.sessions.GetOrCreate(ctx, a, b)
	require.NoError(t, err)
	ac, err := f.sessions.GetOrCreate(ctx, a, c)
	require.NoError(t, err)
	_, err = f.sessions.SendMessage(ctx, ab.ID, b, "latest", "")
	require.NoError(t, err)

	list, err := f.sessions.List(ctx, a)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ab.ID, list[0].Session.ID)
	assert.Equal(t, "bob", list[0].Peer.Handle)
	assert.Equal(t, ac.ID, list[1].Session.ID)

	_, err = f.sessions.Delete(ctx, ab.ID, c)
	assert.ErrorIs(t, err, driftchat_errors.ErrForbidden)

	other, err := f.sessions.Delete(ctx, ab.ID, a)
	require.NoError(t, err)
	assert.Equal(t, b, other)

	list, err = f.sessions.List(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, list)
	inbox, err := f.activity.List(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, inbox)
	chats, err := f.activity.ActiveChats(ctx, a)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, c, chats[0].ID)
}

func TestSessionService_GetOrCreateSurvivesSharerCancellation(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "alice")
	b := f.user(t, "bob")

	entered := make(chan struct{})
	release := make(chan struct{})
	var lookups atomic.Int32
	require.NoError(t, f.store.DB().Callback().Query().Before("gorm:query").
		Register("test:hold_session_lookup", func(db *gorm.DB) {
			if db.Statement.Table != "chat_sessions" {
				return
			}
			if lookups.Add(1) == 1 {
				close(entered)
				<-release
			}
		}))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := f.sessions.GetOrCreate(firstCtx, a, b)
		firstErr <- err
	}()
	<-entered

	type result struct {
		sess conversation.ChatSession
		err  error
	}
	second := make(chan result, 1)
	go func() {
		s, err := f.sessions.GetOrCreate(context.Background(), b, a)
		second <- result{s, err}
	}()
	// let the second caller join the in-flight lookup
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.True(t, res.sess.HasParticipant(a))
	assert.True(t, res.sess.HasParticipant(b))
	assert.Equal(t, int32(1), lookups.Load())
}
