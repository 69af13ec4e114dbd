package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is one row of the key-value settings table. Channel settings are
// stored under "whatsapp-<project_id>" as opaque JSON blobs.
type KVEntry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string
	UpdatedAt time.Time
}

// SettingsStore is a persistent key-value store for per-project channel
// configuration.
type SettingsStore struct {
	db        *gorm.DB
	tableName string
}

func NewSettingsStore(db *gorm.DB, tableName string) *SettingsStore {
	if tableName == "" {
		tableName = "kvstore"
	}

	if err := db.Table(tableName).AutoMigrate(&KVEntry{}); err != nil {
		// AutoMigrate error is ignored here to keep constructor signature simple.
		// The caller is expected to have validated connectivity beforehand.
	}

	return &SettingsStore{
		db:        db,
		tableName: tableName,
	}
}

// Get returns the value stored under key, or empty when no row exists.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).Table(s.tableName).
		Where("key = ?", key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

// Set upserts the value under key.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	entry := KVEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Table(s.tableName).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entry).Error
}

// Remove deletes the row under key; deleting an absent key is not an error.
func (s *SettingsStore) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Table(s.tableName).
		Where("key = ?", key).
		Delete(&KVEntry{}).Error
}
