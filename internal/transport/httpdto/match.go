package httpdto

import "github.com/google/uuid"

type MatchResponse struct {
	User      ProfileResponse `json:"user"`
	SessionID uuid.UUID       `json:"session_id"`
}
