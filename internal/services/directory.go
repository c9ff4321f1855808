package services

import (
	"context"

	"driftchat/internal/domain/user"
	"driftchat/internal/repository"

	"github.com/google/uuid"
)

// Directory is the read side of the account service that this core depends
// on.
type Directory interface {
	GetProfile(ctx context.Context, id uuid.UUID) (user.Profile, error)
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Profile, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	FriendIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

type UserDirectory struct {
	users repository.UserRepository
}

func NewDirectory(users repository.UserRepository) *UserDirectory {
	return &UserDirectory{users: users}
}

func (d *UserDirectory) GetProfile(ctx context.Context, id uuid.UUID) (user.Profile, error) {
	u, err := d.users.GetUserByID(ctx, id)
	if err != nil {
		return user.Profile{}, err
	}
	return u.Profile(), nil
}

func (d *UserDirectory) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Profile, error) {
	users, err := d.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]user.Profile, len(users))
	for _, u := range users {
		out[u.ID] = u.Profile()
	}
	return out, nil
}

func (d *UserDirectory) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return d.users.Exists(ctx, id)
}

func (d *UserDirectory) FriendIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	return d.users.GetFriendIDs(ctx, id)
}

func (d *UserDirectory) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return d.users.ListUserIDs(ctx)
}

// profilesInOrder resolves ids to profiles keeping the order of ids. Unknown
// users get a profile carrying only their id.
func profilesInOrder(ctx context.Context, dir Directory, ids []uuid.UUID) ([]user.Profile, error) {
	byID, err := dir.GetProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]user.Profile, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			p = user.Profile{ID: id}
		}
		out = append(out, p)
	}
	return out, nil
}
