// Package services – ProfileService
//
// This file implements the durable user-profile operations: the onboarding
// upsert, the fail-open lookup used on conversation start, durable edits of
// name and phone from the "my data" screen, and the debounced last-activity
// refresh.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/akbarovs/go-storefront-bot/internal/domain"
)

// UserRepo defines the repository contract required by ProfileService.
type UserRepo interface {
	UpsertUser(ctx context.Context, db *gorm.DB, u *domain.User) error
	GetUser(ctx context.Context, db *gorm.DB, chatID int64) (*domain.User, error)
	UpdateUserName(ctx context.Context, db *gorm.DB, chatID int64, name string) error
	UpdateUserPhone(ctx context.Context, db *gorm.DB, chatID int64, phone string) error
	UpdateUserLang(ctx context.Context, db *gorm.DB, chatID int64, lang string) error
	TouchUserActivity(ctx context.Context, db *gorm.DB, chatID int64, now time.Time, window time.Duration) (bool, error)
}

// ProfileService manages the durable user profile distinct from the
// ephemeral conversational session.
type ProfileService struct {
	DB   *gorm.DB
	Repo UserRepo

	// DebounceWindow caps last-activity writes to one per window.
	DebounceWindow time.Duration

	// now is injectable for tests.
	now func() time.Time
}

// NewProfileService constructs a ProfileService with the 60-second activity
// debounce the storage contract specifies.
func NewProfileService(db *gorm.DB, r UserRepo) *ProfileService {
	return &ProfileService{
		DB:             db,
		Repo:           r,
		DebounceWindow: 60 * time.Second,
		now:            time.Now,
	}
}

// Lookup returns the durable profile for chatID, or (nil, nil) when the user
// has never completed onboarding. Callers treat lookup errors as "no
// profile" so a storage hiccup fails open into onboarding instead of
// blocking the conversation.
func (s *ProfileService) Lookup(ctx context.Context, chatID int64) (*domain.User, error) {
	u, err := s.Repo.GetUser(ctx, s.DB, chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Upsert stores the profile captured during onboarding (or re-captured via
// contact share), overwriting name, phone, and language.
func (s *ProfileService) Upsert(ctx context.Context, chatID int64, name, phone, lang string) error {
	return s.Repo.UpsertUser(ctx, s.DB, &domain.User{
		ChatID: chatID,
		Name:   name,
		Phone:  phone,
		Lang:   lang,
	})
}

// UpdateName durably changes the stored name. A missing profile is not an
// error: the edit then lives only in the session until onboarding completes.
func (s *ProfileService) UpdateName(ctx context.Context, chatID int64, name string) error {
	err := s.Repo.UpdateUserName(ctx, s.DB, chatID, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// UpdatePhone durably changes the stored phone number.
func (s *ProfileService) UpdatePhone(ctx context.Context, chatID int64, phone string) error {
	err := s.Repo.UpdateUserPhone(ctx, s.DB, chatID, phone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// UpdateLang durably changes the stored language preference.
func (s *ProfileService) UpdateLang(ctx context.Context, chatID int64, lang string) error {
	err := s.Repo.UpdateUserLang(ctx, s.DB, chatID, lang)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

// Touch refreshes the profile's last-activity timestamp, debounced to at
// most one write per DebounceWindow. It reports whether a write happened.
func (s *ProfileService) Touch(ctx context.Context, chatID int64) (bool, error) {
	return s.Repo.TouchUserActivity(ctx, s.DB, chatID, s.now().UTC(), s.DebounceWindow)
}
