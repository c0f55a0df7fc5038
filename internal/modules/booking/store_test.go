package booking

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/types"
)

// Runs against a migrated Postgres when CHAUFFEUR_TEST_DSN is set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("CHAUFFEUR_TEST_DSN")
	if dsn == "" {
		t.Skip("CHAUFFEUR_TEST_DSN not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestStore_Lifecycle(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool)
	ctx := context.Background()

	created := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	b := &Booking{
		ID:          types.NewID(),
		CustomerID:  "cust-store-test",
		QuoteID:     types.NewID(),
		ServiceID:   "executive_chauffeur",
		Status:      StatusPendingPayment,
		PickupAt:    time.Date(2026, 10, 14, 11, 0, 0, 0, time.UTC),
		TotalAmount: decimalOf("234"),
		Currency:    "GBP",
		Pricing: pricing.PricingResult{
			ServiceID:   "executive_chauffeur",
			TotalAmount: decimalOf("234"),
			Currency:    "GBP",
			Breakdown: []pricing.BreakdownLine{
				{Description: "Base rate (3h x 65.00 GBP)", Amount: decimalOf("195"), Kind: pricing.LineCharge},
				{Description: "VAT (20%)", Amount: decimalOf("39"), Kind: pricing.LineTax},
			},
		},
		CreatedAt: created,
	}
	require.NoError(t, store.Create(ctx, b))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM bookings WHERE id = $1", string(b.ID))
	})

	got, err := store.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.CustomerID, got.CustomerID)
	assert.True(t, got.TotalAmount.Equal(decimalOf("234")))
	assert.Len(t, got.Pricing.Breakdown, 2)
	assert.Nil(t, got.CancelledAt)

	dup := *b
	dup.ID = types.NewID()
	assert.ErrorIs(t, store.Create(ctx, &dup), ErrQuoteAlreadyBooked)

	stale, err := store.ListStalePending(ctx, time.Now(), 1000)
	require.NoError(t, err)
	found := false
	for _, s := range stale {
		if s.ID == b.ID {
			found = true
		}
	}
	assert.True(t, found, "stale pending booking not listed")

	ok, err := store.UpdateStatus(ctx, b.ID, StatusPendingPayment, StatusCancelled, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.UpdateStatus(ctx, b.ID, StatusPendingPayment, StatusCancelled, 0)
	require.NoError(t, err)
	assert.False(t, ok, "stale version must not update")

	got, err = store.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
	assert.Equal(t, 1, got.StatusVersion)
	assert.NotNil(t, got.CancelledAt)
}

func TestStore_GetMissing(t *testing.T) {
	store := NewStore(testPool(t))
	_, err := store.Get(context.Background(), types.NewID())
	assert.ErrorIs(t, err, ErrNotFound)
}
