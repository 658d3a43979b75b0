package db

import (
	"context"
	"testing"

	"toollend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItemCreatesInventory(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()

	it, err := r.CreateItem(ctx, CreateItemInput{
		Serial:   "SN-0001",
		Name:     "Cordless Drill",
		Category: "power",
		Quantity: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusActive, it.Status)

	inv := inventoryOf(t, r, it.ID)
	assert.Equal(t, 6, inv.TotalQuantity)
	assert.Equal(t, 6, inv.AvailableQuantity)
	assert.Equal(t, 0, inv.TotalBorrowed)
}

func TestSetItemQuantity(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, "Chisel Set", 4)
	uid := uuid.NewString()

	// 加库存
	inv, err := r.SetItemQuantity(ctx, it.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.TotalQuantity)
	assert.Equal(t, 10, inv.AvailableQuantity)

	_, err = r.Checkout(ctx, CheckoutInput{
		UserID: uid,
		Lines:  []CheckoutLine{{ItemID: it.ID, Quantity: 7}},
	})
	require.NoError(t, err)

	// 缩减不得低于已借出数
	_, err = r.SetItemQuantity(ctx, it.ID, 5)
	assert.ErrorIs(t, err, ErrShrinkBelowIssued)

	inv, err = r.SetItemQuantity(ctx, it.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, inv.TotalQuantity)
	assert.Equal(t, 7, inv.TotalBorrowed)
	assert.Equal(t, 1, inv.AvailableQuantity)
	assertConserved(t, r, it.ID)

	_, err = r.SetItemQuantity(ctx, uuid.NewString(), 5)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRetireBlockedWhileUnitsOut(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, "Router Table", 2)
	uid := uuid.NewString()

	rc, err := r.Checkout(ctx, CheckoutInput{
		UserID: uid,
		Lines:  []CheckoutLine{{ItemID: it.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	err = r.RetireItem(ctx, it.ID)
	assert.ErrorIs(t, err, ErrUnitsStillOut)

	_, err = r.ReturnItems(ctx, uid, rc.ID, []ReturnLine{
		{ItemID: it.ID, Quantity: 1, Condition: models.ConditionGood},
	})
	require.NoError(t, err)

	require.NoError(t, r.RetireItem(ctx, it.ID))
	row, err := r.FindItemByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusRetired, row.Status)
}

func TestListItemsFilters(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()
	seedItem(t, r, "Torque Wrench", 3)
	seedItem(t, r, "Torque Screwdriver", 2)
	old := seedItem(t, r, "Hand Plane", 1)
	require.NoError(t, r.RetireItem(ctx, old.ID))

	res, err := r.ListItems(ctx, ItemsQuery{Q: "torque"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)

	res, err = r.ListItems(ctx, ItemsQuery{Status: models.ItemStatusRetired})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Hand Plane", res.Items[0].Name)

	res, err = r.ListItems(ctx, ItemsQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
}

func TestFindItemNotFound(t *testing.T) {
	r := setupTestRepo(t)
	_, err := r.FindItemByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrItemNotFound)
}
