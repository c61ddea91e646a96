package repositories

import (
	"canteen-storefront/models"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionRepository(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSessionRepository(client, time.Hour), mr
}

func TestSessionRepository_LoadEmpty(t *testing.T) {
	repo, _ := newTestSessionRepository(t)

	state, err := repo.LoadCart(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, state.SelectedCanteenID)
	assert.Nil(t, state.TableNumber)
	assert.Empty(t, state.Lines)
}

func TestSessionRepository_SaveAndLoad(t *testing.T) {
	repo, mr := newTestSessionRepository(t)
	ctx := context.Background()

	canteen := 3
	table := "T12"
	state := models.CartState{
		SelectedCanteenID: &canteen,
		TableNumber:       &table,
		Lines: []models.CartLine{
			{MenuItemID: 1, Name: "Tea", UnitPrice: decimal.NewFromInt(15), Quantity: 3},
			{MenuItemID: 2, Name: "Samosa", UnitPrice: decimal.RequireFromString("12.50"), Quantity: 1},
		},
	}

	require.NoError(t, repo.SaveCart(ctx, "sid-1", state))

	assert.Equal(t, "3", mr.HGet("session:sid-1", "selectedCanteenId"))
	assert.Equal(t, "T12", mr.HGet("session:sid-1", "tableNumber"))
	assert.Equal(t, time.Hour, mr.TTL("session:sid-1"))

	loaded, err := repo.LoadCart(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.SelectedCanteenID)
	assert.Equal(t, 3, *loaded.SelectedCanteenID)
	require.NotNil(t, loaded.TableNumber)
	assert.Equal(t, "T12", *loaded.TableNumber)
	require.Len(t, loaded.Lines, 2)
	assert.Equal(t, "Samosa", loaded.Lines[1].Name)
	assert.True(t, loaded.TotalPrice().Equal(decimal.RequireFromString("57.50")))
}

func TestSessionRepository_SaveClearsAbsentFields(t *testing.T) {
	repo, mr := newTestSessionRepository(t)
	ctx := context.Background()

	canteen := 1
	table := "4"
	require.NoError(t, repo.SaveCart(ctx, "sid-2", models.CartState{SelectedCanteenID: &canteen, TableNumber: &table}))
	require.NoError(t, repo.SaveCart(ctx, "sid-2", models.CartState{}))

	assert.Equal(t, "", mr.HGet("session:sid-2", "selectedCanteenId"))
	assert.Equal(t, "", mr.HGet("session:sid-2", "tableNumber"))
	assert.Equal(t, "[]", mr.HGet("session:sid-2", "cartItems"))

	loaded, err := repo.LoadCart(ctx, "sid-2")
	require.NoError(t, err)
	assert.Nil(t, loaded.SelectedCanteenID)
	assert.Nil(t, loaded.TableNumber)
	assert.Empty(t, loaded.Lines)
}

func TestSessionRepository_CorruptItems(t *testing.T) {
	repo, mr := newTestSessionRepository(t)

	mr.HSet("session:sid-3", "cartItems", "not json")

	state, err := repo.LoadCart(context.Background(), "sid-3")
	assert.ErrorIs(t, err, models.ErrCorruptCart)
	assert.NotNil(t, state.Lines)
	assert.Empty(t, state.Lines)
}

func TestSessionRepository_ExpiresWithSession(t *testing.T) {
	repo, mr := newTestSessionRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveCart(ctx, "sid-4", models.CartState{
		Lines: []models.CartLine{{MenuItemID: 9, Name: "Coffee", UnitPrice: decimal.NewFromInt(20), Quantity: 1}},
	}))
	mr.FastForward(2 * time.Hour)

	loaded, err := repo.LoadCart(ctx, "sid-4")
	require.NoError(t, err)
	assert.Empty(t, loaded.Lines)
}
