package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that share one *gorm.DB so that callers can
// run several of them inside a single transaction.
type Store struct {
	db *gorm.DB

	Users    UserRepository
	Sessions SessionRepository
	Rooms    RoomRepository
	Messages MessageRepository
	Activity ActivityRepository
	Blocks   BlockRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		Users:    NewUserRepository(db),
		Sessions: NewSessionRepository(db),
		Rooms:    NewRoomRepository(db),
		Messages: NewMessageRepository(db),
		Activity: NewActivityRepository(db),
		Blocks:   NewBlockRepository(db),
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a Store bound to one database transaction. Inside
// fn only the tx Store may be used.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
