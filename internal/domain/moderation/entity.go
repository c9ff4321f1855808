package moderation

import (
	"time"

	"github.com/google/uuid"
)

// Block is a directed edge: BlockerID no longer wants contact with BlockedID.
type Block struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BlockerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair,priority:1" json:"blocker_id"`
	BlockedID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_blocks_pair,priority:2;index" json:"blocked_id"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Block) TableName() string {
	return "block_relationships"
}

type Report struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID uuid.UUID `gorm:"type:uuid;not null;index" json:"reporter_id"`
	ReportedID uuid.UUID `gorm:"type:uuid;not null;index" json:"reported_id"`
	Reason     string    `gorm:"not null" json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Report) TableName() string {
	return "user_reports"
}
