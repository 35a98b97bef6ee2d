package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akbarovs/go-storefront-bot/internal/domain"
)

func TestUpsertUser_InsertThenOverwrite(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	ctx := context.Background()

	require.NoError(t, UpsertUser(ctx, db, &domain.User{ChatID: 42, Name: "Anna", Phone: "+99890", Lang: "ru"}))

	u, err := GetUser(ctx, db, 42)
	require.NoError(t, err)
	require.Equal(t, "Anna", u.Name)
	created := u.CreatedAt

	require.NoError(t, UpsertUser(ctx, db, &domain.User{ChatID: 42, Name: "Umid", Phone: "+99891", Lang: "uz"}))

	u, err = GetUser(ctx, db, 42)
	require.NoError(t, err)
	require.Equal(t, "Umid", u.Name)
	require.Equal(t, "+99891", u.Phone)
	require.Equal(t, "uz", u.Lang)
	// The original creation time survives the overwrite.
	require.WithinDuration(t, created, u.CreatedAt, time.Second)
}

func TestGetUser_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.User{})

	_, err := GetUser(context.Background(), db, 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUserFields(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	ctx := context.Background()

	require.NoError(t, UpsertUser(ctx, db, &domain.User{ChatID: 42, Name: "Anna", Phone: "+99890", Lang: "ru"}))

	require.NoError(t, UpdateUserName(ctx, db, 42, "Dana"))
	require.NoError(t, UpdateUserPhone(ctx, db, 42, "+99899"))
	require.NoError(t, UpdateUserLang(ctx, db, 42, "uz"))

	u, err := GetUser(ctx, db, 42)
	require.NoError(t, err)
	require.Equal(t, "Dana", u.Name)
	require.Equal(t, "+99899", u.Phone)
	require.Equal(t, "uz", u.Lang)

	// Edits against a missing profile surface ErrNotFound.
	require.ErrorIs(t, UpdateUserName(ctx, db, 7, "x"), ErrNotFound)
}

func TestTouchUserActivity_DebouncesWithinWindow(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	ctx := context.Background()
	window := 60 * time.Second

	base := time.Now().UTC()
	require.NoError(t, UpsertUser(ctx, db, &domain.User{
		ChatID: 42, Name: "Anna", Phone: "+99890", Lang: "ru",
		LastActivityAt: base.Add(-2 * window),
	}))

	// First touch after a long idle period writes.
	wrote, err := TouchUserActivity(ctx, db, 42, base, window)
	require.NoError(t, err)
	require.True(t, wrote)

	// A second touch inside the window is suppressed.
	wrote, err = TouchUserActivity(ctx, db, 42, base.Add(10*time.Second), window)
	require.NoError(t, err)
	require.False(t, wrote)

	// Once the window has passed, the write happens again.
	wrote, err = TouchUserActivity(ctx, db, 42, base.Add(window+time.Second), window)
	require.NoError(t, err)
	require.True(t, wrote)
}

func TestTouchUserActivity_UnknownChatIsNotAnError(t *testing.T) {
	db := newTestDB(t, &domain.User{})

	wrote, err := TouchUserActivity(context.Background(), db, 7, time.Now().UTC(), time.Minute)
	require.NoError(t, err)
	require.False(t, wrote)
}
