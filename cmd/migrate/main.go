package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"driftchat/config"
	"driftchat/internal/services"
	"driftchat/pkg/database"

	"gorm.io/gorm"
)

const usage = `
Driftchat - Database CLI Tool

Usage:
  migrate [flags] [command]

Commands:
  up          Create or update all tables
  status      Show database connection status and row counts
  seed        Seed the default public rooms
  seed-dev    Seed demo users and print access tokens for them
  truncate    Delete every row of every table (DANGEROUS)

Flags:
  -count int          Number of demo users for seed-dev (default 4)
  -token-ttl duration Lifetime of printed dev tokens (default 24h)

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed
  go run cmd/migrate/main.go -count 6 seed-dev
`

func main() {
	count := flag.Int("count", 4, "Number of demo users for seed-dev")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of printed dev tokens")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}

	switch command {
	case "up":
		runMigrationsUp(db)
	case "status":
		showStatus(db)
	case "seed":
		runSeedRooms(db)
	case "seed-dev":
		runSeedDevelopment(db, services.NewAuthService(cfg), *count, *tokenTTL)
	case "truncate":
		runTruncate(db)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(db *gorm.DB) {
	log.Println("🚀 Running migrations UP...")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}

	log.Println("✅ Migrations completed successfully!")
}

func showStatus(db *gorm.DB) {
	log.Println("🔍 Checking database status...")

	tables, err := database.Status(db)
	if err != nil {
		log.Fatalf("❌ Status check failed: %v", err)
	}
	log.Println("✅ Database connection: OK")

	for _, t := range tables {
		if t.Exists {
			log.Printf("✅ Table %-20s exists (%d rows)", t.Table, t.Rows)
		} else {
			log.Printf("❌ Table %-20s does not exist", t.Table)
		}
	}
}

func runSeedRooms(db *gorm.DB) {
	log.Println("🌱 Seeding default rooms...")

	inserted, err := database.SeedRooms(db)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✅ Rooms seeded (%d new)", inserted)
}

func runSeedDevelopment(db *gorm.DB, auth *services.AuthService, count int, ttl time.Duration) {
	log.Println("🌱 Seeding database (development mode)...")

	if _, err := database.SeedRooms(db); err != nil {
		log.Fatalf("❌ Seeding rooms failed: %v", err)
	}
	result, err := database.SeedDev(db, count)
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("📊 Seed Summary:")
	for _, u := range result.Users {
		token, err := auth.IssueAccessToken(u.ID, ttl)
		if err != nil {
			log.Fatalf("❌ Token issue failed for %s: %v", u.Handle, err)
		}
		log.Printf("   - %-10s %s", u.Handle, u.ID)
		log.Printf("     token: %s", token)
	}
	log.Println("✅ Development seeding completed!")
}

func runTruncate(db *gorm.DB) {
	log.Println("⚠️  WARNING: This will TRUNCATE all tables!")

	if err := database.Truncate(db); err != nil {
		log.Fatalf("❌ Truncate failed: %v", err)
	}

	log.Println("✅ All tables truncated!")
}
