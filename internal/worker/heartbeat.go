package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OnlineSource lists the users with at least one live handle in this process.
type OnlineSource interface {
	OnlineUserIDs() []uuid.UUID
}

// Heartbeater refreshes the expiry of a user's mirrored presence entry.
type Heartbeater interface {
	Heartbeat(ctx context.Context, userID uuid.UUID) error
}

// PresenceRefresher keeps the Redis presence mirror alive for every user that
// is still connected here. Entries of a crashed process expire on their own.
type PresenceRefresher struct {
	source   OnlineSource
	target   Heartbeater
	interval time.Duration
	logger   *zap.Logger
}

func NewPresenceRefresher(source OnlineSource, target Heartbeater, interval time.Duration, logger *zap.Logger) *PresenceRefresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PresenceRefresher{
		source:   source,
		target:   target,
		interval: interval,
		logger:   logger.With(zap.String("component", "presence_refresher")),
	}
}

func (p *PresenceRefresher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RefreshOnce(ctx)
		}
	}
}

// RefreshOnce sends one heartbeat per online user and returns how many
// succeeded.
func (p *PresenceRefresher) RefreshOnce(ctx context.Context) int {
	ok := 0
	for _, id := range p.source.OnlineUserIDs() {
		if err := p.target.Heartbeat(ctx, id); err != nil {
			p.logger.Warn("heartbeat failed", zap.String("user_id", id.String()), zap.Error(err))
			continue
		}
		ok++
	}
	return ok
}

type Runner struct {
	refresher *PresenceRefresher
}

func NewRunner(refresher *PresenceRefresher) *Runner {
	return &Runner{refresher: refresher}
}

func (r *Runner) Start(ctx context.Context) {
	go r.refresher.Run(ctx)
}

// DefaultRefresher beats at a third of the presence TTL so a single missed
// tick never lets a live user expire.
func DefaultRefresher(source OnlineSource, target Heartbeater, ttl time.Duration, logger *zap.Logger) *PresenceRefresher {
	interval := ttl / 3
	if interval <= 0 {
		interval = 100 * time.Second
	}
	return NewPresenceRefresher(source, target, interval, logger)
}
