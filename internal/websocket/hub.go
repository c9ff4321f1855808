package websocket

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"driftchat/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const shardCount = 32

type shard struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]map[*Client]struct{}
	channels map[string]map[*Client]struct{}
}

// RoomMembership lists the rooms a user currently belongs to so a new handle
// can be subscribed to them on connect. Satisfied by repository.RoomRepository.
type RoomMembership interface {
	GetUserRoomIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// PresenceMirror receives every connect and disconnect. Implemented by the
// Redis presence store.
type PresenceMirror interface {
	SetOnline(ctx context.Context, userID uuid.UUID, clientID string) error
	SetOffline(ctx context.Context, userID uuid.UUID, clientID string) error
}

// Hub is the connection registry: user -> handles and channel -> handles.
// Both maps are split across shards so unrelated users never share a lock.
// State is process-local and lost on restart.
type Hub struct {
	shards   [shardCount]*shard
	clients  atomic.Int64
	rooms    RoomMembership
	presence PresenceMirror
	logger   *Logger
}

type HubOption func(*Hub)

func WithRoomMembership(rooms RoomMembership) HubOption {
	return func(h *Hub) { h.rooms = rooms }
}

func WithPresenceMirror(p PresenceMirror) HubOption {
	return func(h *Hub) { h.presence = p }
}

func WithLogger(l *Logger) HubOption {
	return func(h *Hub) { h.logger = l }
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{}
	for i := range h.shards {
		h.shards[i] = &shard{
			users:    make(map[uuid.UUID]map[*Client]struct{}),
			channels: make(map[string]map[*Client]struct{}),
		}
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = NewLogger(nil)
	}
	return h
}

func (h *Hub) userShard(id uuid.UUID) *shard {
	f := fnv.New32a()
	_, _ = f.Write(id[:])
	return h.shards[f.Sum32()%shardCount]
}

func (h *Hub) channelShard(name string) *shard {
	f := fnv.New32a()
	_, _ = f.Write([]byte(name))
	return h.shards[f.Sum32()%shardCount]
}

// Connect registers c under its user. Registering the same handle twice is a
// no-op. The handle is subscribed to every room the user is a member of.
func (h *Hub) Connect(ctx context.Context, c *Client) {
	s := h.userShard(c.UserID)
	s.mu.Lock()
	set, ok := s.users[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		s.users[c.UserID] = set
	}
	if _, dup := set[c]; dup {
		s.mu.Unlock()
		return
	}
	set[c] = struct{}{}
	cameOnline := len(set) == 1
	s.mu.Unlock()
	h.clients.Add(1)

	h.logger.Info("connect", c.UserID, c.ID)

	if h.rooms != nil {
		roomIDs, err := h.rooms.GetUserRoomIDs(ctx, c.UserID)
		if err != nil {
			h.logger.Error("rejoin_rooms", c.UserID, c.ID, err)
		}
		for _, id := range roomIDs {
			h.Join(c, events.RoomChannel(id))
		}
	}

	if h.presence != nil {
		if err := h.presence.SetOnline(ctx, c.UserID, c.ID); err != nil {
			h.logger.Warn("presence_mirror", c.UserID, c.ID, zap.Error(err))
		}
	}

	if cameOnline {
		h.broadcastPresence()
	}
}

// Disconnect removes c. Unknown handles are ignored. When c was the user's
// last handle every connection receives a presence update.
func (h *Hub) Disconnect(ctx context.Context, c *Client) {
	s := h.userShard(c.UserID)
	s.mu.Lock()
	set, ok := s.users[c.UserID]
	if !ok {
		s.mu.Unlock()
		return
	}
	if _, known := set[c]; !known {
		s.mu.Unlock()
		return
	}
	delete(set, c)
	wentOffline := len(set) == 0
	if wentOffline {
		delete(s.users, c.UserID)
	}
	s.mu.Unlock()
	h.clients.Add(-1)

	for _, ch := range c.detach() {
		h.removeFromChannel(c, ch)
	}

	h.logger.Info("disconnect", c.UserID, c.ID)

	if h.presence != nil {
		if err := h.presence.SetOffline(ctx, c.UserID, c.ID); err != nil {
			h.logger.Warn("presence_mirror", c.UserID, c.ID, zap.Error(err))
		}
	}

	if wentOffline {
		h.broadcastPresence()
	}
}

// Join subscribes c to channel. It reports false for a disconnected handle.
func (h *Hub) Join(c *Client, channel string) bool {
	s := h.channelShard(channel)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !c.addChannel(channel) {
		return false
	}
	set, ok := s.channels[channel]
	if !ok {
		set = make(map[*Client]struct{})
		s.channels[channel] = set
	}
	set[c] = struct{}{}
	return true
}

// Leave unsubscribes c from channel. Both sides change under the channel
// shard lock, so a racing Join for the same channel sees either state whole.
func (h *Hub) Leave(c *Client, channel string) {
	s := h.channelShard(channel)
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.removeChannel(channel) {
		s.dropSubscriber(c, channel)
	}
}

func (h *Hub) removeFromChannel(c *Client, channel string) {
	s := h.channelShard(channel)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropSubscriber(c, channel)
}

// dropSubscriber expects s.mu to be held.
func (s *shard) dropSubscriber(c *Client, channel string) {
	if set, ok := s.channels[channel]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(s.channels, channel)
		}
	}
}

// JoinUser subscribes every live handle of userID to channel.
func (h *Hub) JoinUser(userID uuid.UUID, channel string) {
	for _, c := range h.Handles(userID) {
		h.Join(c, channel)
	}
}

func (h *Hub) LeaveUser(userID uuid.UUID, channel string) {
	for _, c := range h.Handles(userID) {
		h.Leave(c, channel)
	}
}

// Handles returns a snapshot of the user's live handles.
func (h *Hub) Handles(userID uuid.UUID) []*Client {
	s := h.userShard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.users[userID]
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

func (h *Hub) IsOnline(userID uuid.UUID) bool {
	s := h.userShard(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users[userID]) > 0
}

func (h *Hub) OnlineUserIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0)
	for _, s := range h.shards {
		s.mu.RLock()
		for id := range s.users {
			out = append(out, id)
		}
		s.mu.RUnlock()
	}
	return out
}

func (h *Hub) ClientCount() int {
	return int(h.clients.Load())
}

func (h *Hub) SubscriberCount(channel string) int {
	s := h.channelShard(channel)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels[channel])
}

// Broadcast pushes payload to every handle subscribed to channel and returns
// how many accepted it.
func (h *Hub) Broadcast(channel string, payload []byte) int {
	s := h.channelShard(channel)
	s.mu.RLock()
	targets := make([]*Client, 0, len(s.channels[channel]))
	for c := range s.channels[channel] {
		targets = append(targets, c)
	}
	s.mu.RUnlock()
	return h.push(targets, payload)
}

// SendToUser pushes payload to every live handle of userID.
func (h *Hub) SendToUser(userID uuid.UUID, payload []byte) int {
	return h.push(h.Handles(userID), payload)
}

// BroadcastAll pushes payload to every live handle.
func (h *Hub) BroadcastAll(payload []byte) int {
	var targets []*Client
	for _, s := range h.shards {
		s.mu.RLock()
		for _, set := range s.users {
			for c := range set {
				targets = append(targets, c)
			}
		}
		s.mu.RUnlock()
	}
	return h.push(targets, payload)
}

func (h *Hub) push(targets []*Client, payload []byte) int {
	delivered := 0
	for _, c := range targets {
		if c.Send(payload) {
			delivered++
			continue
		}
		h.logger.Warn("push_dropped", c.UserID, c.ID)
	}
	return delivered
}

func (h *Hub) broadcastPresence() {
	payload, err := events.Encode(events.EventTypePresenceUpdate, events.PresenceUpdate{
		OnlineUserIDs: h.OnlineUserIDs(),
	})
	if err != nil {
		h.logger.Error("presence_encode", uuid.Nil, "", err)
		return
	}
	h.BroadcastAll(payload)
}
