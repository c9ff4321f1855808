package services

import (
	"context"
	"math/rand/v2"

	"driftchat/internal/domain/conversation"
	"driftchat/internal/domain/user"
	"driftchat/internal/repository"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MatchService struct {
	store           *repository.Store
	directory       Directory
	sessions        *SessionService
	notifier        Notifier
	excludeExisting bool
	pick            func(n int) int
}

func NewMatchService(store *repository.Store, directory Directory, sessions *SessionService, notifier Notifier, excludeExisting bool) *MatchService {
	return &MatchService{
		store:           store,
		directory:       directory,
		sessions:        sessions,
		notifier:        notifierOrNop(notifier),
		excludeExisting: excludeExisting,
		pick:            rand.IntN,
	}
}

// WithPicker replaces the uniform random index source.
func (m *MatchService) WithPicker(pick func(n int) int) *MatchService {
	m.pick = pick
	return m
}

type MatchResult struct {
	User    user.Profile
	Session conversation.ChatSession
}

// Candidates is every user requesterID may be matched with: not themself, not
// a friend, not on either side of a block and, when configured, not someone
// they already have a session with.
func (m *MatchService) Candidates(ctx context.Context, requesterID uuid.UUID) ([]uuid.UUID, error) {
	excluded := map[uuid.UUID]struct{}{requesterID: {}}

	friends, err := m.directory.FriendIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	related, err := m.store.Blocks.GetRelatedUserIDs(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	for _, id := range append(friends, related...) {
		excluded[id] = struct{}{}
	}
	if m.excludeExisting {
		partners, err := m.store.Sessions.GetPartnerIDs(ctx, requesterID)
		if err != nil {
			return nil, err
		}
		for _, id := range partners {
			excluded[id] = struct{}{}
		}
	}

	all, err := m.directory.ListUserIDs(ctx)
	if err != nil {
		return nil, err
	}
	pool := make([]uuid.UUID, 0, len(all))
	for _, id := range all {
		if _, skip := excluded[id]; !skip {
			pool = append(pool, id)
		}
	}
	return pool, nil
}

// FindRandom pairs requesterID with a uniformly chosen candidate, opens their
// session and tells the matched user if they are online.
func (m *MatchService) FindRandom(ctx context.Context, requesterID uuid.UUID) (MatchResult, error) {
	pool, err := m.Candidates(ctx, requesterID)
	if err != nil {
		return MatchResult{}, err
	}
	if len(pool) == 0 {
		return MatchResult{}, driftchat_errors.ErrNoMatchAvailable
	}
	peerID := pool[m.pick(len(pool))]

	sess, err := m.sessions.GetOrCreate(ctx, requesterID, peerID)
	if err != nil {
		return MatchResult{}, err
	}
	err = m.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.AddActiveChat(ctx, requesterID, peerID); err != nil {
			return err
		}
		if err := tx.Users.AddActiveChat(ctx, peerID, requesterID); err != nil {
			return err
		}
		if err := tx.Activity.Seed(ctx, requesterID, sess.ID, peerID); err != nil {
			return err
		}
		return tx.Activity.Seed(ctx, peerID, sess.ID, requesterID)
	})
	if err != nil {
		return MatchResult{}, err
	}

	peer, err := m.directory.GetProfile(ctx, peerID)
	if err != nil {
		return MatchResult{}, err
	}
	requester, err := m.directory.GetProfile(ctx, requesterID)
	if err != nil {
		zap.L().Warn("match: requester profile unavailable", zap.String("user_id", requesterID.String()), zap.Error(err))
		requester = user.Profile{ID: requesterID}
	}
	m.notifier.SessionCreated(peerID, requester, sess)

	return MatchResult{User: peer, Session: sess}, nil
}
