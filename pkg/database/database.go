package database

import (
	"context"
	"fmt"
	"time"

	"driftchat/config"
	"driftchat/internal/domain/activity"
	"driftchat/internal/domain/conversation"
	"driftchat/internal/domain/moderation"
	"driftchat/internal/domain/user"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var DB *gorm.DB

// Models lists every table owned by this service, in migration order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Friendship{},
		&user.ActiveChat{},
		&conversation.ChatSession{},
		&conversation.Room{},
		&conversation.RoomParticipant{},
		&conversation.Message{},
		&activity.RecentActivity{},
		&moderation.Block{},
		&moderation.Report{},
	}
}

// Connect opens the configured database and stores it in DB.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.AppMode == "debug" {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case DriverSQLite:
		db, err = OpenSQLite(cfg.DBPath, gormCfg)
	case DriverPostgres, "":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
		if err == nil {
			err = configurePool(db)
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	DB = db
	zap.L().Info("database connection established", zap.String("driver", cfg.DBDriver))
	return db, nil
}

func configurePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return nil
}

// OpenSQLite opens a SQLite database. A single connection is used so that
// ":memory:" databases are shared by every caller and writers serialize.
func OpenSQLite(path string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if gormCfg == nil {
		gormCfg = &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		}
	}
	db, err := gorm.Open(sqlite.Open(path), gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Ping checks that the database answers within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// TableStatus reports whether each table exists and how many rows it holds.
type TableStatus struct {
	Table  string
	Exists bool
	Rows   int64
}

func Status(db *gorm.DB) ([]TableStatus, error) {
	var out []TableStatus
	for _, m := range Models() {
		st := TableStatus{Exists: db.Migrator().HasTable(m)}
		if t, ok := m.(interface{ TableName() string }); ok {
			st.Table = t.TableName()
		}
		if st.Exists {
			if err := db.Model(m).Count(&st.Rows).Error; err != nil {
				return nil, err
			}
		}
		out = append(out, st)
	}
	return out, nil
}

// Truncate deletes every row of every table, children first.
func Truncate(db *gorm.DB) error {
	models := Models()
	return db.Transaction(func(tx *gorm.DB) error {
		for i := len(models) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
				return fmt.Errorf("truncate: %w", err)
			}
		}
		return nil
	})
}
