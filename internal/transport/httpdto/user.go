package httpdto

import (
	"driftchat/internal/domain/user"

	"github.com/google/uuid"
)

type ProfileResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Handle      string    `json:"handle"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
}

func FromProfile(p user.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Handle:      p.Handle,
		AvatarURL:   p.AvatarURL,
	}
}

func FromProfileSlice(items []user.Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(items))
	for _, p := range items {
		out = append(out, FromProfile(p))
	}
	return out
}
