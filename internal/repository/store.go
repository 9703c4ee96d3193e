// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories over one database handle. Inside Transaction
// every repository shares the same transaction.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Capsules() TimeCapsuleRepository
	Circles() MoodCircleRepository
	Vibes() VibeRepository
	Aura() AuraRepository
	MoodStats() MoodStatRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) Users() UserRepository { return NewUserRepository(s.db) }
func (s *store) Posts() PostRepository { return NewPostRepository(s.db) }
func (s *store) Capsules() TimeCapsuleRepository { return NewTimeCapsuleRepository(s.db) }
func (s *store) Circles() MoodCircleRepository { return NewMoodCircleRepository(s.db) }
func (s *store) Vibes() VibeRepository { return NewVibeRepository(s.db) }
func (s *store) Aura() AuraRepository { return NewAuraRepository(s.db) }
func (s *store) MoodStats() MoodStatRepository { return NewMoodStatRepository(s.db) }

func (s *store) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

func (s *store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
