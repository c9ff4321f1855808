package repository

import (
	"context"
	"errors"

	"driftchat/internal/domain/conversation"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormSessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &GormSessionRepository{db: db}
}

// Create inserts s. A second session for the same pair fails with ErrConflict.
func (r *GormSessionRepository) Create(ctx context.Context, s *conversation.ChatSession) error {
	res := r.db.WithContext(ctx).Create(s)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return driftchat_errors.ErrConflict
		}
		return res.Error
	}
	return nil
}

func (r *GormSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.ChatSession, error) {
	var s conversation.ChatSession
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.ChatSession{}, driftchat_errors.ErrNotFound
		}
		return conversation.ChatSession{}, err
	}
	return s, nil
}

func (r *GormSessionRepository) GetByPair(ctx context.Context, a, b uuid.UUID) (conversation.ChatSession, error) {
	low, high := conversation.SortPair(a, b)
	var s conversation.ChatSession
	err := r.db.WithContext(ctx).
		Where("user_low = ? AND user_high = ?", low, high).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.ChatSession{}, driftchat_errors.ErrNotFound
		}
		return conversation.ChatSession{}, err
	}
	return s, nil
}

func (r *GormSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&conversation.ChatSession{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return driftchat_errors.ErrNotFound
	}
	return nil
}

// GetUserSessions returns every session of userID, most recently active first.
func (r *GormSessionRepository) GetUserSessions(ctx context.Context, userID uuid.UUID) ([]conversation.ChatSession, error) {
	var sessions []conversation.ChatSession
	if err := r.db.WithContext(ctx).
		Where("user_low = ? OR user_high = ?", userID, userID).
		Order("updated_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetPartnerIDs returns the other participant of every session of userID.
func (r *GormSessionRepository) GetPartnerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	sessions, err := r.GetUserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(sessions))
	for _, s := range sessions {
		ids = append(ids, s.OtherParticipant(userID))
	}
	return ids, nil
}
