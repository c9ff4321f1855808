package database

import (
	"errors"
	"fmt"
	"time"

	"driftchat/internal/domain/conversation"
	"driftchat/internal/domain/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type roomSeed struct {
	Name        string
	Description string
	Category    conversation.Category
}

var defaultRooms = []roomSeed{
	{"PC & Console Gamers", "Discuss AAA titles, latest game releases, cross-platform debates, and setup flexing.", conversation.CategoryGaming},
	{"Tabletop Tavern", "Board games, DnD sessions, Magic the Gathering, and analog gaming nights.", conversation.CategoryGaming},
	{"LFG Matchmaking", "Find teammates, party up for raids, scrims, co-op missions, and late-night queues.", conversation.CategoryGaming},
	{"Music Hub", "Share tracks, discover new genres, and vibe with fellow music lovers.", conversation.CategoryMusic},
	{"Hip-Hop Heads", "Talk bars, beefs, new drops, classic albums, and regional rap scenes.", conversation.CategoryMusic},
	{"Chill & Classical", "Lo-fi, classical, ambient, instrumental. Music to think, study, or zone out to.", conversation.CategoryMusic},
	{"Movie Buffs", "From blockbusters to indies, share hot takes and hidden gems.", conversation.CategoryMovie},
	{"A24 & Artsy Vibes", "For the lovers of cinematography, storytelling, and emotionally devastating endings.", conversation.CategoryMovie},
	{"Marvel vs DC", "Hot takes, trailer drops, release news, and comic-to-screen discussions.", conversation.CategoryMovie},
	{"Binge Watchers", "Series finales, weekly episode threads, and what to watch next.", conversation.CategoryTVShow},
	{"Late Night Talks", "Unfiltered chats, shower thoughts, 2AM confessions, and random chaos.", conversation.CategoryRandom},
	{"Hot Takes Only", "Come here to debate. No opinions too bold. Keep it spicy but respectful.", conversation.CategoryRandom},
	{"Memes & Mayhem", "Dump your memes, TikToks, cursed content, or wholesome chaos.", conversation.CategoryRandom},
}

// SeedRooms creates the default public rooms. Rooms that already exist by name
// are left untouched. It returns the number of rooms inserted.
func SeedRooms(db *gorm.DB) (int64, error) {
	now := time.Now().UTC()
	rooms := make([]conversation.Room, 0, len(defaultRooms))
	for _, r := range defaultRooms {
		rooms = append(rooms, conversation.Room{
			ID:          uuid.New(),
			Name:        r.Name,
			Description: r.Description,
			Category:    r.Category,
			IsPublic:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rooms)
	if res.Error != nil {
		return 0, fmt.Errorf("seed rooms: %w", res.Error)
	}
	zap.L().Info("seeded default rooms", zap.Int64("inserted", res.RowsAffected))
	return res.RowsAffected, nil
}

// DevSeedResult holds what SeedDev created.
type DevSeedResult struct {
	Users []user.User
}

// SeedDev creates a handful of demo users. The first two are friends, so the
// matchmaker never pairs them.
func SeedDev(db *gorm.DB, count int) (*DevSeedResult, error) {
	if count < 2 {
		count = 2
	}
	now := time.Now().UTC()
	result := &DevSeedResult{}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i := 1; i <= count; i++ {
			u := user.User{
				ID:          uuid.New(),
				Handle:      fmt.Sprintf("drifter%d", i),
				DisplayName: fmt.Sprintf("Drifter %d", i),
				AvatarURL:   fmt.Sprintf("https://avatar.iran.liara.run/public/%d", i),
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			var existing user.User
			err := tx.Where("handle = ?", u.Handle).First(&existing).Error
			if err == nil {
				result.Users = append(result.Users, existing)
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
			result.Users = append(result.Users, u)
		}

		a, b := result.Users[0].ID, result.Users[1].ID
		friends := []user.Friendship{
			{UserID: a, FriendID: b, CreatedAt: now},
			{UserID: b, FriendID: a, CreatedAt: now},
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&friends).Error
	})
	if err != nil {
		return nil, fmt.Errorf("seed dev data: %w", err)
	}
	return result, nil
}
