package conversation

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSession Kind = "session"
	KindRoom    Kind = "room"
)

type Category string

const (
	CategoryGaming Category = "Gaming"
	CategoryMusic  Category = "Music"
	CategoryMovie  Category = "Movie"
	CategoryTVShow Category = "TV Show"
	CategoryRandom Category = "Random"
)

var Categories = []Category{CategoryGaming, CategoryMusic, CategoryMovie, CategoryTVShow, CategoryRandom}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// Message is one entry of a session or room log. Seq is assigned at append
// time and is dense per conversation starting at 1.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_messages_conversation_seq,priority:1" json:"conversation_id"`
	Seq            int64     `gorm:"not null;uniqueIndex:idx_messages_conversation_seq,priority:2" json:"seq"`
	Kind           Kind      `gorm:"type:varchar(16);not null" json:"kind"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Text           string    `json:"text,omitempty"`
	Image          string    `json:"image,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// Snapshot is the denormalized copy of a message kept on sessions, rooms and
// recent-activity entries. A zero Seq means no message yet.
type Snapshot struct {
	ID        uuid.UUID `gorm:"type:uuid" json:"id"`
	SenderID  uuid.UUID `gorm:"type:uuid" json:"sender_id"`
	Text      string    `json:"text,omitempty"`
	Image     string    `json:"image,omitempty"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

func (m Message) Snapshot() Snapshot {
	return Snapshot{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		Image:     m.Image,
		Seq:       m.Seq,
		CreatedAt: m.CreatedAt,
	}
}

func (s Snapshot) IsEmpty() bool {
	return s.Seq == 0
}

// ChatSession is a private conversation between exactly two users. The pair is
// stored sorted so (UserLow, UserHigh) identifies the unordered pair.
type ChatSession struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserLow     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_sessions_pair,priority:1" json:"-"`
	UserHigh    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_chat_sessions_pair,priority:2;index" json:"-"`
	LastSeq     int64     `gorm:"not null" json:"-"`
	LastMessage Snapshot  `gorm:"embedded;embeddedPrefix:last_message_" json:"last_message"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// NewChatSession returns an unsaved session for the unordered pair {a, b}.
func NewChatSession(a, b uuid.UUID) ChatSession {
	low, high := SortPair(a, b)
	now := time.Now().UTC()
	return ChatSession{
		ID:        uuid.New(),
		UserLow:   low,
		UserHigh:  high,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SortPair orders two ids bytewise.
func SortPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}

// PairKey is a stable key for the unordered pair {a, b}.
func PairKey(a, b uuid.UUID) string {
	low, high := SortPair(a, b)
	return low.String() + ":" + high.String()
}

func (s ChatSession) Participants() []uuid.UUID {
	return []uuid.UUID{s.UserLow, s.UserHigh}
}

func (s ChatSession) HasParticipant(id uuid.UUID) bool {
	return s.UserLow == id || s.UserHigh == id
}

// OtherParticipant returns the participant that is not id.
func (s ChatSession) OtherParticipant(id uuid.UUID) uuid.UUID {
	if s.UserLow == id {
		return s.UserHigh
	}
	return s.UserLow
}

// Room is a public topic room. Rooms are seeded administratively.
type Room struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	Description string    `json:"description"`
	Category    Category  `gorm:"type:varchar(32);not null;index" json:"category"`
	IsPublic    bool      `gorm:"not null" json:"is_public"`
	LastSeq     int64     `gorm:"not null" json:"-"`
	LastMessage Snapshot  `gorm:"embedded;embeddedPrefix:last_message_" json:"last_message"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Room) TableName() string {
	return "rooms"
}

type RoomParticipant struct {
	RoomID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"room_id"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
}

func (RoomParticipant) TableName() string {
	return "room_participants"
}

// RoomSummary is a room with its current member count.
type RoomSummary struct {
	Room
	ParticipantCount int64 `json:"participant_count"`
}
