package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/chorus-ai/chorus/agent/session"
)

// SessionRecord is the audit row written per snapshot. Conflict and
// consensus details are stored as JSON blobs; the indexed columns cover
// the queries audit tooling actually runs (by session, by phase).
type SessionRecord struct {
	ID              uint      `gorm:"primaryKey"`
	SessionID       string    `gorm:"index;size:64;not null"`
	Phase           string    `gorm:"size:32;not null"`
	Iteration       int       `gorm:"not null"`
	BudgetExhausted bool      `gorm:"not null"`
	ResponseCount   int       `gorm:"not null"`
	ConflictCount   int       `gorm:"not null"`
	Conflicts       string    `gorm:"type:text"`
	Consensus       string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

// TableName keeps the table name stable across gorm naming strategies.
func (SessionRecord) TableName() string { return "chorus_session_records" }

// SQLiteSink persists snapshots into a sqlite audit table via gorm.
type SQLiteSink struct {
	db *gorm.DB
}

// NewSQLiteSink opens (or creates) the sqlite database at dsn and
// migrates the audit table.
func NewSQLiteSink(dsn string) (*SQLiteSink, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&SessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

// Persist writes one audit row for the snapshot.
func (s *SQLiteSink) Persist(ctx context.Context, snap *session.Snapshot) error {
	conflicts, err := json.Marshal(snap.Conflicts)
	if err != nil {
		return fmt.Errorf("marshal conflicts: %w", err)
	}
	consensus := "null"
	if snap.LatestConsensus != nil {
		data, err := json.Marshal(snap.LatestConsensus)
		if err != nil {
			return fmt.Errorf("marshal consensus: %w", err)
		}
		consensus = string(data)
	}

	record := SessionRecord{
		SessionID:       snap.SessionID,
		Phase:           string(snap.Phase),
		Iteration:       snap.Iteration,
		BudgetExhausted: snap.BudgetExhausted,
		ResponseCount:   snap.ResponseCount,
		ConflictCount:   len(snap.Conflicts),
		Conflicts:       string(conflicts),
		Consensus:       consensus,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("insert session record: %w", err)
	}
	return nil
}

// Records returns all audit rows for a session, oldest first.
func (s *SQLiteSink) Records(ctx context.Context, sessionID string) ([]SessionRecord, error) {
	var records []SessionRecord
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("query session records: %w", err)
	}
	return records, nil
}

// Close releases the underlying connection pool.
func (s *SQLiteSink) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ Sink = (*SQLiteSink)(nil)
