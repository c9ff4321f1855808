package httpdto

import (
	"time"

	"driftchat/internal/domain/moderation"
	"driftchat/internal/domain/user"

	"github.com/google/uuid"
)

// BlockUserRequest is used for POST /blocks/:userId
type BlockUserRequest struct {
	Reason string `json:"reason"`
}

// ReportUserRequest is used for POST /reports/:userId
type ReportUserRequest struct {
	Reason string `json:"reason"`
}

type BlockResponse struct {
	ID        uuid.UUID        `json:"id"`
	Blocked   *ProfileResponse `json:"blocked,omitempty"`
	BlockedID uuid.UUID        `json:"blocked_id"`
	Reason    string           `json:"reason,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type ReportResponse struct {
	ID         uuid.UUID `json:"id"`
	ReportedID uuid.UUID `json:"reported_id"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

func FromBlock(b moderation.Block) BlockResponse {
	return BlockResponse{
		ID:        b.ID,
		BlockedID: b.BlockedID,
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt,
	}
}

func FromBlockWithProfile(b moderation.Block, blocked user.Profile) BlockResponse {
	res := FromBlock(b)
	p := FromProfile(blocked)
	res.Blocked = &p
	return res
}

func FromReport(r moderation.Report) ReportResponse {
	return ReportResponse{
		ID:         r.ID,
		ReportedID: r.ReportedID,
		Reason:     r.Reason,
		CreatedAt:  r.CreatedAt,
	}
}
