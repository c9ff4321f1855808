package repository

import (
	"context"
	"errors"
	"time"

	"driftchat/internal/domain/conversation"
	driftchat_errors "driftchat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormRoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &GormRoomRepository{db: db}
}

func (r *GormRoomRepository) Create(ctx context.Context, room *conversation.Room) error {
	res := r.db.WithContext(ctx).Create(room)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return driftchat_errors.ErrConflict
		}
		return res.Error
	}
	return nil
}

func (r *GormRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Room, error) {
	var room conversation.Room
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.Room{}, driftchat_errors.ErrNotFound
		}
		return conversation.Room{}, err
	}
	return room, nil
}

// List returns public rooms ordered by name. An empty category lists all.
func (r *GormRoomRepository) List(ctx context.Context, category conversation.Category) ([]conversation.Room, error) {
	q := r.db.WithContext(ctx).
		Model(&conversation.Room{}).
		Where("is_public = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var rooms []conversation.Room
	if err := q.Order("name ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}

func (r *GormRoomRepository) CountParticipants(ctx context.Context, roomIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(roomIDs))
	if len(roomIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		RoomID uuid.UUID
		Total  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&conversation.RoomParticipant{}).
		Select("room_id, COUNT(*) AS total").
		Where("room_id IN ?", roomIDs).
		Group("room_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.RoomID] = row.Total
	}
	return counts, nil
}

// AddParticipant adds userID to the room. It reports whether the membership
// was new; joining twice is not an error.
func (r *GormRoomRepository) AddParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	p := conversation.RoomParticipant{RoomID: roomID, UserID: userID, JoinedAt: time.Now().UTC()}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveParticipant removes userID from the room and reports whether it was a
// member.
func (r *GormRoomRepository) RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&conversation.RoomParticipant{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRoomRepository) IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&conversation.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRoomRepository) GetParticipantIDs(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&conversation.RoomParticipant{}).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormRoomRepository) GetUserRoomIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&conversation.RoomParticipant{}).
		Where("user_id = ?", userID).
		Pluck("room_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
