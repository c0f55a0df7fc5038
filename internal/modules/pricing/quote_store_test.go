package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chauffeur/internal/types"
)

func sampleQuote(t *testing.T) *Quote {
	t.Helper()
	res, err := NewEngine(testCard(), nil).Calculate(hourly("chauffeur", 3, offPeak))
	require.NoError(t, err)
	exp := offPeak.Add(30 * time.Minute)
	return &Quote{
		ID:          types.ID("6f1c2f4e-8d8b-4c9e-9a51-0f6b2f0f3a11"),
		BookingType: BookingHourly,
		PickupAt:    offPeak,
		Passengers:  1,
		Result:      res,
		CreatedAt:   offPeak,
		ExpiresAt:   &exp,
	}
}

func TestQuoteStore_Save(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewQuoteStore(db, 30*time.Minute)
	q := sampleQuote(t)

	data, err := json.Marshal(q)
	require.NoError(t, err)
	mock.ExpectSet("pricing:quote:"+string(q.ID), string(data), 30*time.Minute).SetVal("OK")

	assert.NoError(t, store.Save(context.Background(), q))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteStore_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewQuoteStore(db, 30*time.Minute)
	q := sampleQuote(t)

	data, err := json.Marshal(q)
	require.NoError(t, err)
	mock.ExpectGet("pricing:quote:" + string(q.ID)).SetVal(string(data))

	got, err := store.Get(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.ID, got.ID)
	assert.True(t, got.Result.TotalAmount.Equal(dec("234")))
	assert.Len(t, got.Result.Breakdown, 2)
	assert.Equal(t, "Base rate (3h x 65.00 GBP)", got.Result.Breakdown[0].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteStore_GetMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewQuoteStore(db, time.Minute)

	mock.ExpectGet("pricing:quote:missing").RedisNil()

	_, err := store.Get(context.Background(), types.ID("missing"))
	assert.ErrorIs(t, err, ErrQuoteNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteStore_GetRedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewQuoteStore(db, time.Minute)

	mock.ExpectGet("pricing:quote:q1").SetErr(errors.New("connection refused"))

	_, err := store.Get(context.Background(), types.ID("q1"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuoteNotFound)
}

func TestQuoteStore_GetCorrupt(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewQuoteStore(db, time.Minute)

	mock.ExpectGet("pricing:quote:q1").SetVal("{not json")

	_, err := store.Get(context.Background(), types.ID("q1"))
	assert.ErrorContains(t, err, "decode quote q1")
}

func TestQuoteStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewQuoteStore(db, time.Minute)

	mock.ExpectDel("pricing:quote:q1").SetVal(1)

	assert.NoError(t, store.Delete(context.Background(), types.ID("q1")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
