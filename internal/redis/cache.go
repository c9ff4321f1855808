package redis

import (
	"context"
	"encoding/json"
	"time"

	"driftchat/internal/domain/user"
	"driftchat/internal/services"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key pattern: user:{user_id}:profile, expires after ProfileTTL

type CacheConfig struct {
	ProfileTTL time.Duration
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{ProfileTTL: 5 * time.Minute}
}

// CachedDirectory is a cache-aside services.Directory. Redis failures fall
// through to the wrapped directory.
type CachedDirectory struct {
	next   services.Directory
	client *goredis.Client
	config CacheConfig
}

var _ services.Directory = (*CachedDirectory)(nil)

func NewCachedDirectory(next services.Directory, client *goredis.Client, config CacheConfig) *CachedDirectory {
	if config.ProfileTTL == 0 {
		config = DefaultCacheConfig()
	}
	return &CachedDirectory{next: next, client: client, config: config}
}

func profileKey(id uuid.UUID) string {
	return "user:" + id.String() + ":profile"
}

func (d *CachedDirectory) GetProfile(ctx context.Context, id uuid.UUID) (user.Profile, error) {
	var cached user.Profile
	if hit := d.get(ctx, profileKey(id), &cached); hit {
		return cached, nil
	}
	p, err := d.next.GetProfile(ctx, id)
	if err != nil {
		return user.Profile{}, err
	}
	d.set(ctx, profileKey(id), p)
	return p, nil
}

func (d *CachedDirectory) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Profile, error) {
	out := make(map[uuid.UUID]user.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = profileKey(id)
	}

	var missing []uuid.UUID
	values, err := d.client.MGet(ctx, keys...).Result()
	if err != nil {
		zap.L().Warn("profile cache read failed", zap.Error(err))
		missing = ids
	} else {
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				missing = append(missing, ids[i])
				continue
			}
			var p user.Profile
			if err := json.Unmarshal([]byte(raw), &p); err != nil {
				missing = append(missing, ids[i])
				continue
			}
			out[ids[i]] = p
		}
	}

	if len(missing) == 0 {
		return out, nil
	}
	fetched, err := d.next.GetProfiles(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, p := range fetched {
		out[id] = p
		d.set(ctx, profileKey(id), p)
	}
	return out, nil
}

func (d *CachedDirectory) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var cached user.Profile
	if hit := d.get(ctx, profileKey(id), &cached); hit {
		return true, nil
	}
	return d.next.Exists(ctx, id)
}

// FriendIDs and ListUserIDs are never cached; the matchmaker must see new
// friendships and new accounts as soon as they are recorded.
func (d *CachedDirectory) FriendIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return d.next.FriendIDs(ctx, id)
}

func (d *CachedDirectory) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return d.next.ListUserIDs(ctx)
}

// Invalidate drops the cached profile of id.
func (d *CachedDirectory) Invalidate(ctx context.Context, id uuid.UUID) error {
	return d.client.Del(ctx, profileKey(id)).Err()
}

func (d *CachedDirectory) get(ctx context.Context, key string, dest interface{}) bool {
	data, err := d.client.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return false
	}
	if err != nil {
		zap.L().Warn("profile cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (d *CachedDirectory) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := d.client.Set(ctx, key, data, d.config.ProfileTTL).Err(); err != nil {
		zap.L().Warn("profile cache write failed", zap.String("key", key), zap.Error(err))
	}
}
