package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"driftchat/config"
	"driftchat/internal/domain/conversation"
	"driftchat/internal/domain/user"
	"driftchat/internal/repository"
	"driftchat/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu             sync.Mutex
	sessionMsgs    []conversation.Message
	roomMsgs       []conversation.Message
	sessionCreated []uuid.UUID
	joined         []uuid.UUID
	left           []uuid.UUID
}

func (n *recordingNotifier) SessionMessage(_ conversation.ChatSession, m conversation.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sessionMsgs = append(n.sessionMsgs, m)
}

func (n *recordingNotifier) RoomMessage(_ uuid.UUID, m conversation.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.roomMsgs = append(n.roomMsgs, m)
}

func (n *recordingNotifier) SessionCreated(recipientID uuid.UUID, _ user.Profile, _ conversation.ChatSession) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sessionCreated = append(n.sessionCreated, recipientID)
}

func (n *recordingNotifier) RoomMemberJoined(_, userID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.joined = append(n.joined, userID)
}

func (n *recordingNotifier) RoomMemberLeft(_, userID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.left = append(n.left, userID)
}

type fixture struct {
	store    *repository.Store
	dir      Directory
	notifier *recordingNotifier
	sessions *SessionService
	rooms    *RoomService
	activity *ActivityService
	blocks   *BlockService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := repository.NewStore(db)
	dir := NewDirectory(store.Users)
	n := &recordingNotifier{}
	return &fixture{
		store:    store,
		dir:      dir,
		notifier: n,
		sessions: NewSessionService(store, dir, n),
		rooms:    NewRoomService(store, dir, n),
		activity: NewActivityService(store, dir),
		blocks:   NewBlockService(store, dir),
	}
}

func (f *fixture) user(t *testing.T, handle string) uuid.UUID {
	t.Helper()
	u := user.User{ID: uuid.New(), Handle: handle, DisplayName: handle, CreatedAt: time.Now().UTC()}
	require.NoError(t, f.store.DB().Create(&u).Error)
	return u.ID
}

func (f *fixture) befriend(t *testing.T, a, b uuid.UUID) {
	t.Helper()
	require.NoError(t, f.store.DB().Create(&[]user.Friendship{
		{UserID: a, FriendID: b},
		{UserID: b, FriendID: a},
	}).Error)
}

func (f *fixture) room(t *testing.T, name string) uuid.UUID {
	t.Helper()
	r := conversation.Room{ID: uuid.New(), Name: name, Category: conversation.CategoryGaming, IsPublic: true}
	require.NoError(t, f.store.Rooms.Create(context.Background(), &r))
	return r.ID
}

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret"}
}
