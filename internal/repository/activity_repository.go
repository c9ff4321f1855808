package repository

import (
	"context"
	"time"

	"driftchat/internal/domain/activity"
	"driftchat/internal/domain/conversation"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

var activityKey = []clause.Column{{Name: "user_id"}, {Name: "conversation_id"}}

// RecordMessage upserts userID's entry for the conversation with m as its last
// message. The unread counter goes up by one for messages from someone else
// and drops to zero for the user's own messages.
func (r *GormActivityRepository) RecordMessage(ctx context.Context, userID, conversationID, otherPartyID uuid.UUID, m conversation.Message) error {
	unread := 0
	var unreadOnConflict interface{} = 0
	if m.SenderID != userID {
		unread = 1
		unreadOnConflict = gorm.Expr("recent_activities.unread_count + 1")
	}

	entry := activity.RecentActivity{
		UserID:         userID,
		ConversationID: conversationID,
		OtherPartyID:   otherPartyID,
		LastMessage:    m.Snapshot(),
		UnreadCount:    unread,
		LastActivityAt: m.CreatedAt,
		UpdatedAt:      time.Now().UTC(),
	}

	updates := clause.AssignmentColumns([]string{
		"other_party_id",
		"last_message_id",
		"last_message_sender_id",
		"last_message_text",
		"last_message_image",
		"last_message_seq",
		"last_message_created_at",
		"last_activity_at",
		"updated_at",
	})
	updates = append(updates, clause.Assignment{Column: clause.Column{Name: "unread_count"}, Value: unreadOnConflict})

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: activityKey, DoUpdates: updates}).
		Create(&entry).Error
}

// Seed creates an empty entry for a fresh conversation. Existing entries are
// kept as they are.
func (r *GormActivityRepository) Seed(ctx context.Context, userID, conversationID, otherPartyID uuid.UUID) error {
	now := time.Now().UTC()
	entry := activity.RecentActivity{
		UserID:         userID,
		ConversationID: conversationID,
		OtherPartyID:   otherPartyID,
		LastActivityAt: now,
		UpdatedAt:      now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: activityKey, DoNothing: true}).
		Create(&entry).Error
}

func (r *GormActivityRepository) MarkRead(ctx context.Context, userID, conversationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&activity.RecentActivity{}).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		UpdateColumn("unread_count", 0).Error
}

func (r *GormActivityRepository) Remove(ctx context.Context, userID, conversationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Delete(&activity.RecentActivity{}).Error
}

func (r *GormActivityRepository) RemoveConversation(ctx context.Context, conversationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&activity.RecentActivity{}).Error
}

// RemoveBetween drops every entry of a that points at b and vice versa.
func (r *GormActivityRepository) RemoveBetween(ctx context.Context, a, b uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("(user_id = ? AND other_party_id = ?) OR (user_id = ? AND other_party_id = ?)", a, b, b, a).
		Delete(&activity.RecentActivity{}).Error
}

// GetUserActivity lists userID's entries, most recent activity first.
func (r *GormActivityRepository) GetUserActivity(ctx context.Context, userID uuid.UUID) ([]activity.RecentActivity, error) {
	var entries []activity.RecentActivity
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_activity_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
