package services

import (
	"context"

	"driftchat/internal/domain/activity"
	"driftchat/internal/domain/user"
	"driftchat/internal/repository"

	"github.com/google/uuid"
)

type ActivityService struct {
	store     *repository.Store
	directory Directory
}

func NewActivityService(store *repository.Store, directory Directory) *ActivityService {
	return &ActivityService{store: store, directory: directory}
}

type ActivityItem struct {
	Entry      activity.RecentActivity
	OtherParty user.Profile
}

// List returns userID's inbox, most recent first.
func (s *ActivityService) List(ctx context.Context, userID uuid.UUID) ([]ActivityItem, error) {
	entries, err := s.store.Activity.GetUserActivity(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.OtherPartyID)
	}
	profiles, err := profilesInOrder(ctx, s.directory, ids)
	if err != nil {
		return nil, err
	}
	out := make([]ActivityItem, 0, len(entries))
	for i, e := range entries {
		out = append(out, ActivityItem{Entry: e, OtherParty: profiles[i]})
	}
	return out, nil
}

// MarkRead clears the unread counter. Unknown conversations are ignored.
func (s *ActivityService) MarkRead(ctx context.Context, userID, conversationID uuid.UUID) error {
	return s.store.Activity.MarkRead(ctx, userID, conversationID)
}

// ActiveChats returns the peers userID currently has a session with.
func (s *ActivityService) ActiveChats(ctx context.Context, userID uuid.UUID) ([]user.Profile, error) {
	ids, err := s.store.Users.GetActiveChatPeerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profilesInOrder(ctx, s.directory, ids)
}
