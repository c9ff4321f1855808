package repository

import (
	"context"

	"driftchat/internal/domain/moderation"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormBlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &GormBlockRepository{db: db}
}

// Create stores b. An existing edge for the same ordered pair is ErrConflict.
func (r *GormBlockRepository) Create(ctx context.Context, b *moderation.Block) error {
	res := r.db.WithContext(ctx).Create(b)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return driftchat_errors.ErrConflict
		}
		return res.Error
	}
	return nil
}

func (r *GormBlockRepository) Delete(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&moderation.Block{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return driftchat_errors.ErrNotFound
	}
	return nil
}

func (r *GormBlockRepository) GetBlocksByBlocker(ctx context.Context, blockerID uuid.UUID) ([]moderation.Block, error) {
	var blocks []moderation.Block
	if err := r.db.WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Order("created_at DESC").
		Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

// IsBlocked is true when either user blocks the other.
func (r *GormBlockRepository) IsBlocked(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&moderation.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetRelatedUserIDs returns everyone userID blocks plus everyone blocking
// userID.
func (r *GormBlockRepository) GetRelatedUserIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var blocked []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&moderation.Block{}).
		Where("blocker_id = ?", userID).
		Pluck("blocked_id", &blocked).Error; err != nil {
		return nil, err
	}
	var blockers []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&moderation.Block{}).
		Where("blocked_id = ?", userID).
		Pluck("blocker_id", &blockers).Error; err != nil {
		return nil, err
	}
	return uniqueIDs(append(blocked, blockers...)), nil
}

func (r *GormBlockRepository) CreateReport(ctx context.Context, rep *moderation.Report) error {
	return r.db.WithContext(ctx).Create(rep).Error
}
