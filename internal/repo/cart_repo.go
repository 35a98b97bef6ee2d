// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the persisted
// cart snapshot.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - GetCart returns an empty item list (not an error) for chats that have
//     never saved a cart, because an absent cart and an empty cart are
//     indistinguishable to callers.
//   - On DB errors, the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/akbarovs/go-storefront-bot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// SaveCart writes the authoritative cart snapshot for chatID, fully
// replacing any previous snapshot (overwrite, not merge).
func SaveCart(ctx context.Context, db *gorm.DB, chatID int64, items domain.CartItems) error {
	if items == nil {
		items = domain.CartItems{}
	}
	c := &domain.Cart{
		ChatID:    chatID,
		Items:     items,
		UpdatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			UpdateAll: true,
		}).
		Create(c).Error
}

// GetCart reads the persisted cart snapshot for chatID. A chat without a
// saved cart yields an empty item list and no error.
func GetCart(ctx context.Context, db *gorm.DB, chatID int64) (domain.CartItems, error) {
	var c domain.Cart
	err := db.WithContext(ctx).First(&c, "chat_id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.CartItems{}, nil
	}
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		return domain.CartItems{}, nil
	}
	return c.Items, nil
}
