package repository

import (
	"context"
	"errors"
	"time"

	"driftchat/internal/domain/user"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, driftchat_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *GormUserRepository) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]user.User, error) {
	if len(ids) == 0 {
		return []user.User{}, nil
	}
	var users []user.User
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormUserRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&user.User{}).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormUserRepository) GetFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&user.Friendship{}).
		Where("user_id = ?", userID).
		Pluck("friend_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormUserRepository) AddActiveChat(ctx context.Context, userID, peerID uuid.UUID) error {
	ac := user.ActiveChat{UserID: userID, PeerID: peerID, CreatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&ac).Error
}

func (r *GormUserRepository) RemoveActiveChat(ctx context.Context, userID, peerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND peer_id = ?", userID, peerID).
		Delete(&user.ActiveChat{}).Error
}

func (r *GormUserRepository) GetActiveChatPeerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&user.ActiveChat{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("peer_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
