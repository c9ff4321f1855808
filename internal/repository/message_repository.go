package repository

import (
	"context"
	"fmt"
	"time"

	"driftchat/internal/domain/conversation"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &GormMessageRepository{db: db}
}

func conversationModel(kind conversation.Kind) (interface{}, error) {
	switch kind {
	case conversation.KindSession:
		return &conversation.ChatSession{}, nil
	case conversation.KindRoom:
		return &conversation.Room{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown conversation kind %q", driftchat_errors.ErrValidation, kind)
	}
}

// Append assigns the next sequence number of m's conversation, inserts m and
// overwrites the conversation's last-message snapshot, all in one transaction.
// The sequence bump is a single UPDATE, so concurrent appends to the same
// conversation serialize on that row while other conversations proceed.
func (r *GormMessageRepository) Append(ctx context.Context, m *conversation.Message) error {
	model, err := conversationModel(m.Kind)
	if err != nil {
		return err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(model).
			Where("id = ?", m.ConversationID).
			UpdateColumn("last_seq", gorm.Expr("last_seq + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return driftchat_errors.ErrNotFound
		}

		var seq int64
		if err := tx.Model(model).
			Select("last_seq").
			Where("id = ?", m.ConversationID).
			Scan(&seq).Error; err != nil {
			return err
		}
		m.Seq = seq

		if err := tx.Create(m).Error; err != nil {
			if isUniqueViolation(err) {
				return driftchat_errors.ErrConflict
			}
			return err
		}

		snap := m.Snapshot()
		return tx.Model(model).
			Where("id = ?", m.ConversationID).
			UpdateColumns(map[string]interface{}{
				"last_message_id":         snap.ID,
				"last_message_sender_id":  snap.SenderID,
				"last_message_text":       snap.Text,
				"last_message_image":      snap.Image,
				"last_message_seq":        snap.Seq,
				"last_message_created_at": snap.CreatedAt,
				"updated_at":              m.CreatedAt,
			}).Error
	})
}

// GetConversationMessages returns messages in append order. With limit <= 0
// the whole log is returned; otherwise the newest limit messages with a
// sequence below beforeSeq (when beforeSeq > 0).
func (r *GormMessageRepository) GetConversationMessages(ctx context.Context, conversationID uuid.UUID, beforeSeq int64, limit int) ([]conversation.Message, error) {
	q := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID)
	if beforeSeq > 0 {
		q = q.Where("seq < ?", beforeSeq)
	}

	var messages []conversation.Message
	if limit <= 0 {
		if err := q.Order("seq ASC").Find(&messages).Error; err != nil {
			return nil, err
		}
		return messages, nil
	}

	if err := q.Order("seq DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *GormMessageRepository) DeleteConversationMessages(ctx context.Context, conversationID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Delete(&conversation.Message{}).Error
}
