// Package services – CartService
//
// This file implements durable cart persistence keyed by chat id. The merge
// rules themselves (replace / add / remove) live on domain.CartItems so the
// conversational reducer and the HTTP layer share one implementation; this
// service owns only the authoritative snapshot.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/akbarovs/go-storefront-bot/internal/domain"
)

// CartRepo defines the repository contract required by CartService.
type CartRepo interface {
	// SaveCart fully replaces the persisted snapshot for the chat.
	SaveCart(ctx context.Context, db *gorm.DB, chatID int64, items domain.CartItems) error

	// GetCart reads the persisted snapshot; absent carts read as empty.
	GetCart(ctx context.Context, db *gorm.DB, chatID int64) (domain.CartItems, error)
}

// CartService owns the durable cart snapshot.
type CartService struct {
	DB   *gorm.DB
	Repo CartRepo
}

// NewCartService constructs a CartService.
func NewCartService(db *gorm.DB, r CartRepo) *CartService {
	return &CartService{DB: db, Repo: r}
}

// Save persists the cart snapshot for chatID with full overwrite semantics.
func (s *CartService) Save(ctx context.Context, chatID int64, items domain.CartItems) error {
	return s.Repo.SaveCart(ctx, s.DB, chatID, items)
}

// Get reads the persisted cart snapshot for chatID.
func (s *CartService) Get(ctx context.Context, chatID int64) (domain.CartItems, error) {
	return s.Repo.GetCart(ctx, s.DB, chatID)
}
