// internal/store/inapp/inapp_test.go
package inapp

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return New(rdb), mr
}

func TestStore_CreateAndList(t *testing.T) {
	store, _ := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "u-1", "booking.created", map[string]any{
		"title":   "Booking confirmed",
		"message": "See you soon",
	}))
	require.NoError(t, store.Create(ctx, "u-1", "review.received", map[string]any{
		"title": "New review",
	}))

	records, err := store.List(ctx, "u-1", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "review.received", records[0].Type)
	assert.Equal(t, "booking.created", records[1].Type)
	assert.Equal(t, "u-1", records[0].UserID)
	assert.NotEmpty(t, records[0].ID)
	assert.False(t, records[0].Read)
	assert.Equal(t, "Booking confirmed", records[1].Data["title"])
}

func TestStore_List_LimitAndDefault(t *testing.T) {
	store, _ := setupRedis(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		require.NoError(t, store.Create(ctx, "u-1", fmt.Sprintf("event.%d", i), nil))
	}

	records, err := store.List(ctx, "u-1", 5)
	require.NoError(t, err)
	assert.Len(t, records, 5)
	assert.Equal(t, "event.59", records[0].Type)

	records, err = store.List(ctx, "u-1", 0)
	require.NoError(t, err)
	assert.Len(t, records, 50, "non-positive limit uses the default page size")
}

func TestStore_List_EmptyUser(t *testing.T) {
	store, _ := setupRedis(t)

	records, err := store.List(context.Background(), "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_Create_SetsTTL(t *testing.T) {
	store, mr := setupRedis(t)

	require.NoError(t, store.Create(context.Background(), "u-1", "booking.created", nil))
	assert.Equal(t, store.ttl, mr.TTL("notify:inapp:u-1"))
}

func TestStore_Create_TrimsList(t *testing.T) {
	store, mr := setupRedis(t)
	ctx := context.Background()

	for i := 0; i < maxListLength+20; i++ {
		require.NoError(t, store.Create(ctx, "u-1", "event", nil))
	}

	items, err := mr.List("notify:inapp:u-1")
	require.NoError(t, err)
	assert.Len(t, items, maxListLength)
}
