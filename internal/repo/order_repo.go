// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Order model.
//
// Functions:
//
//   - CreateOrder(ctx, db, order) -> error
//     Inserts a new order row keyed by its merchant transaction id.
//
//   - ListOrders(ctx, db, chatID) -> []domain.Order, error
//     Returns all orders for a chat, oldest first.
//
//   - CountOrders(ctx, db) -> (int64, error)
//     Returns the total number of order rows across all chats.
//
//   - ClearOrders(ctx, db, chatID) -> (before, after int64, error)
//     Deletes every order belonging to the chat and reports the global row
//     counts before and after the delete. Idempotent.
//
//   - UpdateOrderStatus(ctx, db, transID, status) -> error
//     Moves an order forward (CREATED -> PAID|CANCELED) and rejects any
//     other transition.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/akbarovs/go-storefront-bot/internal/domain"
)

// ErrInvalidTransition is returned when an order status update would move a
// record backward or out of the allowed CREATED -> PAID|CANCELED paths.
var ErrInvalidTransition = errors.New("invalid order status transition")

// CreateOrder inserts a new order row. The merchant transaction id must be
// unique; CreatedAt is set to UTC when the caller left it zero.
func CreateOrder(ctx context.Context, db *gorm.DB, o *domain.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = domain.StatusCreated
	}
	return db.WithContext(ctx).Create(o).Error
}

// ListOrders returns all orders belonging to chatID, ordered by creation
// time ascending (oldest first, matching the chat rendering order). It
// returns an empty slice when the chat has no orders.
func ListOrders(ctx context.Context, db *gorm.DB, chatID int64) ([]domain.Order, error) {
	var out []domain.Order
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// CountOrders returns the total number of order rows across all chats.
func CountOrders(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Order{}).Count(&total).Error
	return total, err
}

// ClearOrders deletes every order belonging to chatID and returns the global
// order counts before and after the delete. Clearing a chat with no orders
// is a no-op that reports identical counts.
func ClearOrders(ctx context.Context, db *gorm.DB, chatID int64) (before, after int64, err error) {
	if before, err = CountOrders(ctx, db); err != nil {
		return 0, 0, err
	}
	if err = db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&domain.Order{}).Error; err != nil {
		return 0, 0, err
	}
	if after, err = CountOrders(ctx, db); err != nil {
		return 0, 0, err
	}
	return before, after, nil
}

// UpdateOrderStatus transitions the order identified by transID to status.
// Only forward transitions are applied (CREATED -> PAID or CANCELED); any
// other request returns ErrInvalidTransition, and an unknown transaction id
// returns ErrNotFound.
func UpdateOrderStatus(ctx context.Context, db *gorm.DB, transID, status string) error {
	if !domain.CanTransition(domain.StatusCreated, status) {
		return ErrInvalidTransition
	}
	res := db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("merchant_trans_id = ? AND status = ?", transID, domain.StatusCreated).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the id is unknown or the order already left CREATED.
		var o domain.Order
		if err := db.WithContext(ctx).First(&o, "merchant_trans_id = ?", transID).Error; err != nil {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}
