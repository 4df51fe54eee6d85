// Package journal keeps a SQLite log of assistant turns: what the user asked,
// which tool was called with which arguments, and what came back.
package journal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// ErrMissingPath is returned by Open when no database path is given.
var ErrMissingPath = errors.New("journal path is empty")

// Turn is one recorded assistant turn.
type Turn struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID     string `gorm:"column:session_id;not null;default:''"`
	Input         string `gorm:"column:input;not null;default:''"`
	ToolName      string `gorm:"column:tool_name;not null;default:''"`
	ToolArguments string `gorm:"column:tool_arguments;not null;default:''"`
	ToolResult    string `gorm:"column:tool_result;not null;default:''"`
	ToolError     bool   `gorm:"column:tool_error;not null;default:false"`
	Reply         string `gorm:"column:reply;not null;default:''"`
	Error         string `gorm:"column:error;not null;default:''"`
	Calls         int    `gorm:"column:calls;not null;default:0"`
	DurationMS    int64  `gorm:"column:duration_ms;not null;default:0"`
	CreatedAt     int64  `gorm:"column:created_at;not null;default:0"`
}

func (Turn) TableName() string { return "turns" }

// Created returns CreatedAt as a time.
func (t Turn) Created() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

// Journal appends turns to a SQLite database.
type Journal struct {
	db *gorm.DB
}

// Open opens or creates the database at path and syncs the schema.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, ErrMissingPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
	}, &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	j := &Journal{db: db}
	for _, stmt := range []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			j.Close()
			return nil, fmt.Errorf("failed to configure journal: %w", err)
		}
	}

	if err := db.AutoMigrate(&Turn{}); err != nil {
		j.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_turns_session_id ON turns(session_id);`).Error; err != nil {
		j.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		j.Close()
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	return j, nil
}

// Record inserts t, stamping CreatedAt when unset. t.ID is filled on success.
func (j *Journal) Record(ctx context.Context, t *Turn) error {
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().UnixMilli()
	}
	if err := j.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}

// Recent returns up to limit of the latest turns, oldest first. A limit of
// zero or less returns every turn.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Turn, error) {
	q := j.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var turns []Turn
	if err := q.Find(&turns).Error; err != nil {
		return nil, fmt.Errorf("failed to list turns: %w", err)
	}
	slices.Reverse(turns)
	return turns, nil
}

// Session returns the turns recorded under sessionID, oldest first.
func (j *Journal) Session(ctx context.Context, sessionID string) ([]Turn, error) {
	var turns []Turn
	err := j.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&turns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list session turns: %w", err)
	}
	return turns, nil
}

// Count returns the number of recorded turns.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := j.db.WithContext(ctx).Model(&Turn{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}
	return n, nil
}

// Close releases the database.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
