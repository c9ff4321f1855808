package httpdto

import (
	"time"

	"driftchat/internal/domain/conversation"

	"github.com/google/uuid"
)

// ListRoomsRequest holds query parameters for GET /rooms
type ListRoomsRequest struct {
	Category string `form:"category"`
}

type RoomResponse struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description,omitempty"`
	Category         string            `json:"category"`
	IsPublic         bool              `json:"is_public"`
	ParticipantCount int64             `json:"participant_count"`
	LastMessage      *SnapshotResponse `json:"last_message,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

type RoomMembershipResponse struct {
	RoomID uuid.UUID `json:"room_id"`
	Joined bool      `json:"joined"`
}

func FromRoomSummary(r conversation.RoomSummary) RoomResponse {
	return RoomResponse{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		Category:         string(r.Category),
		IsPublic:         r.IsPublic,
		ParticipantCount: r.ParticipantCount,
		LastMessage:      FromSnapshot(r.LastMessage),
		CreatedAt:        r.CreatedAt,
	}
}

func FromRoomSummarySlice(items []conversation.RoomSummary) []RoomResponse {
	out := make([]RoomResponse, 0, len(items))
	for _, r := range items {
		out = append(out, FromRoomSummary(r))
	}
	return out
}
