// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the durable
// User profile.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/akbarovs/go-storefront-bot/internal/domain"
)

// UpsertUser inserts the profile for u.ChatID or overwrites the existing
// row's name, phone, and language. CreatedAt is preserved on conflict.
func UpsertUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.LastActivityAt.IsZero() {
		u.LastActivityAt = now
	}
	u.UpdatedAt = now
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "lang", "updated_at"}),
		}).
		Create(u).Error
}

// GetUser fetches the durable profile for chatID, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, chatID int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "chat_id = ?", chatID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUserName changes the stored name for chatID. Returns ErrNotFound
// when no profile exists yet.
func UpdateUserName(ctx context.Context, db *gorm.DB, chatID int64, name string) error {
	return updateUserField(ctx, db, chatID, "name", name)
}

// UpdateUserPhone changes the stored phone number for chatID. Returns
// ErrNotFound when no profile exists yet.
func UpdateUserPhone(ctx context.Context, db *gorm.DB, chatID int64, phone string) error {
	return updateUserField(ctx, db, chatID, "phone", phone)
}

// UpdateUserLang changes the stored language for chatID. Returns ErrNotFound
// when no profile exists yet.
func UpdateUserLang(ctx context.Context, db *gorm.DB, chatID int64, lang string) error {
	return updateUserField(ctx, db, chatID, "lang", lang)
}

func updateUserField(ctx context.Context, db *gorm.DB, chatID int64, column, value string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("chat_id = ?", chatID).
		Updates(map[string]any{column: value, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TouchUserActivity refreshes last_activity_at for chatID, but only when the
// stored timestamp is older than the debounce window. The guarded UPDATE
// keeps the write rate at one per window regardless of event volume.
// It reports whether a write actually happened; an unknown chat id is not an
// error (the profile may simply not exist yet).
func TouchUserActivity(ctx context.Context, db *gorm.DB, chatID int64, now time.Time, window time.Duration) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("chat_id = ? AND last_activity_at <= ?", chatID, now.Add(-window)).
		Update("last_activity_at", now)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
