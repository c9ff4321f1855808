package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record owned by the account service. This core reads it
// and never writes it outside of seeding.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Handle      string    `gorm:"not null;uniqueIndex" json:"handle"`
	DisplayName string    `gorm:"not null" json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Friendship is one directed row of the friends set; accepted friendships are
// stored in both directions.
type Friendship struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FriendID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"friend_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ActiveChat records that UserID has an open 1:1 conversation with PeerID.
type ActiveChat struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	PeerID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"peer_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the public view of a user handed to other users.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Handle      string    `json:"handle"`
	AvatarURL   string    `json:"avatar_url"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Handle:      u.Handle,
		AvatarURL:   u.AvatarURL,
	}
}

func (User) TableName() string {
	return "users"
}

func (Friendship) TableName() string {
	return "friendships"
}

func (ActiveChat) TableName() string {
	return "active_chats"
}
