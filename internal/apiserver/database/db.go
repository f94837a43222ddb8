package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/storecrew/storecrew/internal/common/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB implements the Database interface on top of gorm.
type DB struct {
	db *gorm.DB
}

// NewDatabase creates a Database for the configured driver
func NewDatabase(cfg *config.DatabaseConfig) (Database, error) {
	var dialector gorm.Dialector
	switch cfg.Type {
	case "postgres":
		dialector = postgres.Open(cfg.GetDSN())
	case "mysql":
		dialector = mysql.Open(cfg.GetDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.GetDSN())
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.Type)
	}
	return open(dialector)
}

// NewPostgres creates a Postgres-backed Database
func NewPostgres(cfg *config.DatabaseConfig) (Database, error) {
	return open(postgres.Open(cfg.GetDSN()))
}

// NewMySQL creates a MySQL-backed Database
func NewMySQL(cfg *config.DatabaseConfig) (Database, error) {
	return open(mysql.Open(cfg.GetDSN()))
}

// NewSQLite creates a SQLite-backed Database. Pass ":memory:" as the dbname
// for an ephemeral store (used heavily by tests).
func NewSQLite(cfg *config.DatabaseConfig) (Database, error) {
	return open(sqlite.Open(cfg.GetDSN()))
}

func open(dialector gorm.Dialector) (Database, error) {
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := gormDB.AutoMigrate(
		&User{},
		&Channel{},
		&ChannelMember{},
		&InviteCode{},
		&Category{},
		&Topic{},
		&TopicMember{},
		&Message{},
		&ReadPosition{},
		&CalendarEvent{},
		&LaborContract{},
		&AttendanceLog{},
		&Handover{},
		&VoiceMemo{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &DB{db: gormDB}, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
