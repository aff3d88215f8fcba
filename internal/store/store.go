// Package store persists finished-match records to Postgres via gorm. The
// relay works fine without it; the server only wires it up when a DSN is
// configured.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type MatchResult struct {
	ID            uint   `gorm:"primaryKey"`
	Code          string `gorm:"size:6;index"`
	Winner        string `gorm:"size:16"`
	Turns         int
	CheatDetected bool
	CreatedAt     time.Time
}

type Store struct {
	db *gorm.DB
}

// Open connects and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&MatchResult{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) SaveResult(ctx context.Context, r MatchResult) error {
	return s.db.WithContext(ctx).Create(&r).Error
}

// Recent returns the newest n results, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]MatchResult, error) {
	var results []MatchResult
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(n).
		Find(&results).Error
	return results, err
}
