package httpdto

import (
	"time"

	"driftchat/internal/domain/conversation"

	"github.com/google/uuid"
)

// SendSessionMessageRequest is used for POST /sessions/:id/messages
type SendSessionMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// SendRoomMessageRequest is used for POST /rooms/:id/messages
type SendRoomMessageRequest struct {
	Text string `json:"text"`
}

// ListMessagesRequest holds query parameters for reading a log page
type ListMessagesRequest struct {
	BeforeSeq int64 `form:"before_seq"`
	Limit     int   `form:"limit"`
}

type MessageResponse struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	Kind           string    `json:"kind"`
	Seq            int64     `json:"seq"`
	SenderID       uuid.UUID `json:"sender_id"`
	Text           string    `json:"text,omitempty"`
	Image          string    `json:"image,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type SnapshotResponse struct {
	ID        uuid.UUID `json:"id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

func FromMessage(m conversation.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		Kind:           string(m.Kind),
		Seq:            m.Seq,
		SenderID:       m.SenderID,
		Text:           m.Text,
		Image:          m.Image,
		CreatedAt:      m.CreatedAt,
	}
}

func FromMessageSlice(items []conversation.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, FromMessage(m))
	}
	return out
}

// FromSnapshot returns nil for a conversation with no messages yet.
func FromSnapshot(s conversation.Snapshot) *SnapshotResponse {
	if s.IsEmpty() {
		return nil
	}
	return &SnapshotResponse{
		ID:        s.ID,
		SenderID:  s.SenderID,
		Text:      s.Text,
		Image:     s.Image,
		Seq:       s.Seq,
		CreatedAt: s.CreatedAt,
	}
}
