package httpdto

import (
	"time"

	"driftchat/internal/domain/conversation"
	"driftchat/internal/domain/user"

	"github.com/google/uuid"
)

type SessionResponse struct {
	ID           uuid.UUID         `json:"id"`
	Participants []uuid.UUID       `json:"participants"`
	Peer         *ProfileResponse  `json:"peer,omitempty"`
	LastMessage  *SnapshotResponse `json:"last_message,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// DeleteSessionResponse names the other participant so the client can drop
// its cached copy of the peer.
type DeleteSessionResponse struct {
	SessionID     uuid.UUID `json:"session_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
}

func FromSession(s conversation.ChatSession) SessionResponse {
	return SessionResponse{
		ID:           s.ID,
		Participants: s.Participants(),
		LastMessage:  FromSnapshot(s.LastMessage),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func FromSessionWithPeer(s conversation.ChatSession, peer user.Profile) SessionResponse {
	res := FromSession(s)
	p := FromProfile(peer)
	res.Peer = &p
	return res
}
