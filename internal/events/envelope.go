package events

import (
	"encoding/json"
	"time"

	"driftchat/internal/domain/conversation"
	"driftchat/internal/domain/user"

	"github.com/google/uuid"
)

// Envelope is every frame the server pushes.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// ClientFrame is every frame a client sends.
type ClientFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type PresenceUpdate struct {
	OnlineUserIDs []uuid.UUID `json:"online_user_ids"`
}

type MessageNew struct {
	ConversationID   uuid.UUID            `json:"conversation_id"`
	ConversationKind conversation.Kind    `json:"conversation_kind"`
	Message          conversation.Message `json:"message"`
}

type SessionCreated struct {
	User    user.Profile `json:"user"`
	Session SessionInfo  `json:"session"`
}

type SessionInfo struct {
	ID           uuid.UUID   `json:"id"`
	Participants []uuid.UUID `json:"participants"`
	CreatedAt    time.Time   `json:"created_at"`
}

func NewSessionInfo(s conversation.ChatSession) SessionInfo {
	return SessionInfo{ID: s.ID, Participants: s.Participants(), CreatedAt: s.CreatedAt}
}

type RoomMember struct {
	RoomID uuid.UUID `json:"room_id"`
	UserID uuid.UUID `json:"user_id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Encode wraps payload in an Envelope and marshals it.
func Encode(eventType string, payload interface{}) ([]byte, error) {
	env := Envelope{Type: eventType, OccurredAt: time.Now().UTC()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}
