package redis

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"driftchat/internal/domain/user"
	"driftchat/internal/events"
	"driftchat/internal/repository"
	"driftchat/internal/services"
	"driftchat/pkg/database"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient connects to a local Redis on db 15 and skips when none is
// reachable.
func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	c := NewClient(Config{Host: host, Port: "6379", DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := Ping(ctx, c); err != nil {
		_ = c.Close()
		t.Skipf("redis unavailable: %v", err)
	}
	require.NoError(t, c.FlushDB(context.Background()).Err())
	t.Cleanup(func() {
		_ = c.FlushDB(context.Background()).Err()
		_ = c.Close()
	})
	return c
}

func TestPresenceStore_LastConnectionWins(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	ps := NewPresenceStore(c, NewPublisher(c), time.Minute)
	u := uuid.New()

	sub := c.Subscribe(ctx, events.PresenceChannel(u))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, ps.SetOnline(ctx, u, "c1"))
	require.NoError(t, ps.SetOnline(ctx, u, "c2"))

	online, err := ps.IsOnline(ctx, u)
	require.NoError(t, err)
	assert.True(t, online)
	n, err := ps.ConnectionCount(ctx, u)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, ps.SetOffline(ctx, u, "c1"))
	online, err = ps.IsOnline(ctx, u)
	require.NoError(t, err)
	assert.True(t, online, "one connection left")

	require.NoError(t, ps.SetOffline(ctx, u, "c2"))
	online, err = ps.IsOnline(ctx, u)
	require.NoError(t, err)
	assert.False(t, online)

	ids, err := ps.OnlineUserIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	var got []PresenceEvent
	ch := sub.Channel()
	for len(got) < 2 {
		select {
		case msg := <-ch:
			var ev PresenceEvent
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
			got = append(got, ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected 2 presence events, got %d", len(got))
		}
	}
	assert.True(t, got[0].IsOnline)
	assert.False(t, got[1].IsOnline)
	assert.Equal(t, u.String(), got[0].UserID)
}

func TestPresenceStore_ExpiresWithoutDisconnect(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	ps := NewPresenceStore(c, nil, time.Second)
	crashed, alive := uuid.New(), uuid.New()

	require.NoError(t, ps.SetOnline(ctx, crashed, "c1"))
	require.NoError(t, ps.SetOnline(ctx, alive, "c2"))

	// only the live process keeps beating
	deadline := time.Now().Add(2500 * time.Millisecond)
	for time.Now().Before(deadline) {
		require.NoError(t, ps.Heartbeat(ctx, alive))
		time.Sleep(300 * time.Millisecond)
	}

	online, err := ps.IsOnline(ctx, crashed)
	require.NoError(t, err)
	assert.False(t, online)
	online, err = ps.IsOnline(ctx, alive)
	require.NoError(t, err)
	assert.True(t, online)

	ids, err := ps.OnlineUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alive}, ids)
	member, err := c.SIsMember(ctx, "presence:online", crashed.String()).Result()
	require.NoError(t, err)
	assert.False(t, member, "stale index entry pruned")

	// a crashed user coming back is announced again
	require.NoError(t, ps.SetOnline(ctx, crashed, "c3"))
	online, err = ps.IsOnline(ctx, crashed)
	require.NoError(t, err)
	assert.True(t, online)
}

func TestRateLimiter_AllowMessage(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	rl := NewRateLimiter(c, RateLimitConfig{MessageLimit: 3, MessageWindow: time.Minute})
	u := uuid.New()

	for i := 0; i < 3; i++ {
		res, err := rl.AllowMessage(ctx, u)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}
	res, err := rl.AllowMessage(ctx, u)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 3, res.Limit)

	other, err := rl.AllowMessage(ctx, uuid.New())
	require.NoError(t, err)
	assert.True(t, other.Allowed, "quota is per user")

	require.NoError(t, rl.ResetUser(ctx, u))
	res, err = rl.AllowMessage(ctx, u)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

type countingDirectory struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]user.Profile
	calls    int
}

func (d *countingDirectory) GetProfile(_ context.Context, id uuid.UUID) (user.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.profiles[id], nil
}

func (d *countingDirectory) GetProfiles(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	out := make(map[uuid.UUID]user.Profile)
	for _, id := range ids {
		if p, ok := d.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (d *countingDirectory) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := d.profiles[id]
	return ok, nil
}

func (d *countingDirectory) FriendIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return nil, nil
}

func (d *countingDirectory) ListUserIDs(context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(d.profiles))
	for id := range d.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestCachedDirectory_CacheAside(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	a := user.Profile{ID: uuid.New(), DisplayName: "Alice", Handle: "alice"}
	b := user.Profile{ID: uuid.New(), DisplayName: "Bob", Handle: "bob"}
	next := &countingDirectory{profiles: map[uuid.UUID]user.Profile{a.ID: a, b.ID: b}}
	dir := NewCachedDirectory(next, c, CacheConfig{ProfileTTL: time.Minute})

	got, err := dir.GetProfile(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)
	got, err = dir.GetProfile(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)
	assert.Equal(t, 1, next.calls)

	// a is cached, only b goes to the backing directory
	all, err := dir.GetProfiles(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, b, all[b.ID])
	assert.Equal(t, 2, next.calls)

	_, err = dir.GetProfiles(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)

	require.NoError(t, dir.Invalidate(ctx, a.ID))
	_, err = dir.GetProfile(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, next.calls)

	ok, err := dir.Exists(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCachedDirectory_MatchSeesNewFriendship(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	db, err := database.OpenSQLite(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	now := time.Now().UTC()
	a := user.User{ID: uuid.New(), Handle: "alice", DisplayName: "Alice", CreatedAt: now, UpdatedAt: now}
	b := user.User{ID: uuid.New(), Handle: "bob", DisplayName: "Bob", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	store := repository.NewStore(db)
	dir := NewCachedDirectory(services.NewDirectory(store.Users), c, CacheConfig{ProfileTTL: time.Minute})
	sessions := services.NewSessionService(store, dir, nil)
	matcher := services.NewMatchService(store, dir, sessions, nil, true)

	pool, err := matcher.Candidates(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b.ID}, pool)

	require.NoError(t, db.Create(&[]user.Friendship{
		{UserID: a.ID, FriendID: b.ID, CreatedAt: now},
		{UserID: b.ID, FriendID: a.ID, CreatedAt: now},
	}).Error)

	_, err = matcher.FindRandom(ctx, a.ID)
	assert.ErrorIs(t, err, driftchat_errors.ErrNoMatchAvailable)
}
