package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()
	a := seedItem(t, r, "Drill Press", 5)
	seedItem(t, r, "Lathe", 2)

	past := time.Now().UTC().Add(-48 * time.Hour)
	_, err := r.Checkout(ctx, CheckoutInput{
		UserID: uuid.NewString(),
		Lines:  []CheckoutLine{{ItemID: a.ID, Quantity: 3}},
		DueAt:  &past,
	})
	require.NoError(t, err)

	stats, err := r.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalItems)
	assert.EqualValues(t, 7, stats.TotalUnits)
	assert.EqualValues(t, 3, stats.UnitsOut)
	assert.EqualValues(t, 1, stats.ActiveReceipts)
	assert.EqualValues(t, 1, stats.OverdueReceipts)
}

func TestAdminBorrowList(t *testing.T) {
	r := setupTestRepo(t)
	ctx := context.Background()
	it := seedItem(t, r, "Grinder", 5)

	past := time.Now().UTC().Add(-24 * time.Hour)
	_, err := r.Checkout(ctx, CheckoutInput{
		UserID: uuid.NewString(),
		Lines:  []CheckoutLine{{ItemID: it.ID, Quantity: 1}},
		DueAt:  &past,
	})
	require.NoError(t, err)
	_, err = r.Checkout(ctx, CheckoutInput{
		UserID: uuid.NewString(),
		Lines:  []CheckoutLine{{ItemID: it.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	res, err := r.ListReceiptsAdmin(ctx, AdminBorrowsQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)

	res, err = r.ListReceiptsAdmin(ctx, AdminBorrowsQuery{Overdue: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].Overdue)
}
