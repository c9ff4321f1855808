package redis

import (
	"context"
	"time"

	"driftchat/internal/events"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// PresenceEvent is published on channel:presence:<user_id> whenever a user
// gains their first or loses their last connection.
type PresenceEvent struct {
	UserID    string    `json:"user_id"`
	IsOnline  bool      `json:"is_online"`
	Timestamp time.Time `json:"timestamp"`
}

// PresenceStore mirrors the in-process connection registry into Redis so
// other processes can answer "who is online".
type PresenceStore struct {
	client    *goredis.Client
	publisher *Publisher
	ttl       time.Duration
}

const (
	presenceOnlineSet   = "presence:online"
	presenceConnsPrefix = "presence:conns:" // hash client_id -> connected_at
)

func NewPresenceStore(client *goredis.Client, publisher *Publisher, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{
		client:    client,
		publisher: publisher,
		ttl:       ttl,
	}
}

func connsKey(userID uuid.UUID) string {
	return presenceConnsPrefix + userID.String()
}

// SetOnline records clientID as a live connection of userID. The connection
// hash is the source of truth; presence:online is only an index of candidates.
func (p *PresenceStore) SetOnline(ctx context.Context, userID uuid.UUID, clientID string) error {
	now := time.Now()
	key := connsKey(userID)

	pipe := p.client.TxPipeline()
	pipe.HSet(ctx, key, clientID, now.Unix())
	pipe.Expire(ctx, key, p.ttl)
	conns := pipe.HLen(ctx, key)
	pipe.SAdd(ctx, presenceOnlineSet, userID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	if conns.Val() == 1 {
		return p.publish(ctx, userID, true, now)
	}
	return nil
}

// SetOffline drops clientID. The user leaves the online index once no
// connection remains.
func (p *PresenceStore) SetOffline(ctx context.Context, userID uuid.UUID, clientID string) error {
	now := time.Now()
	key := connsKey(userID)

	removed, err := p.client.HDel(ctx, key, clientID).Result()
	if err != nil {
		return err
	}
	remaining, err := p.client.HLen(ctx, key).Result()
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}

	if err := p.client.SRem(ctx, presenceOnlineSet, userID.String()).Err(); err != nil {
		return err
	}
	if removed > 0 {
		return p.publish(ctx, userID, false, now)
	}
	return nil
}

// Heartbeat extends the TTL on the user's connection hash. A process that
// stops beating lets its users expire.
func (p *PresenceStore) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	return p.client.Expire(ctx, connsKey(userID), p.ttl).Err()
}

func (p *PresenceStore) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := p.client.Exists(ctx, connsKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OnlineUserIDs lists users with an unexpired connection hash. Index entries
// whose hash has expired are pruned.
func (p *PresenceStore) OnlineUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	members, err := p.client.SMembers(ctx, presenceOnlineSet).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(members))
	checks := make([]*goredis.IntCmd, 0, len(members))
	pipe := p.client.Pipeline()
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		checks = append(checks, pipe.Exists(ctx, connsKey(id)))
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	online := ids[:0]
	var stale []interface{}
	for i, id := range ids {
		if checks[i].Val() > 0 {
			online = append(online, id)
		} else {
			stale = append(stale, id.String())
		}
	}
	if len(stale) > 0 {
		if err := p.client.SRem(ctx, presenceOnlineSet, stale...).Err(); err != nil {
			return nil, err
		}
	}
	return online, nil
}

// ConnectionCount returns the number of live connections recorded for userID.
func (p *PresenceStore) ConnectionCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return p.client.HLen(ctx, connsKey(userID)).Result()
}

func (p *PresenceStore) publish(ctx context.Context, userID uuid.UUID, online bool, at time.Time) error {
	if p.publisher == nil {
		return nil
	}
	_, err := p.publisher.PublishJSON(ctx, events.PresenceChannel(userID), PresenceEvent{
		UserID:    userID.String(),
		IsOnline:  online,
		Timestamp: at,
	})
	return err
}
