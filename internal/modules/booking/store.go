// README: Booking store backed by PostgreSQL.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"chauffeur/internal/types"
)

const uniqueViolation = "23505"

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, b *Booking) error {
	pricingJSON, err := json.Marshal(b.Pricing)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, customer_id, quote_id, service_id, status, status_version,
			pickup_at, total_amount, currency, pricing, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8::numeric, $9, $10, $11
		)`,
		string(b.ID),
		b.CustomerID,
		string(b.QuoteID),
		b.ServiceID,
		string(b.Status),
		b.StatusVersion,
		b.PickupAt,
		b.TotalAmount.StringFixed(2),
		b.Currency,
		pricingJSON,
		b.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "bookings_quote_id_key" {
		return ErrQuoteAlreadyBooked
	}
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, customer_id, quote_id, service_id, status, status_version,
		       pickup_at, total_amount::text, currency, pricing, created_at, cancelled_at
		FROM bookings
		WHERE id = $1`, string(id),
	)

	var b Booking
	var total string
	var pricingJSON []byte
	err := row.Scan(
		&b.ID, &b.CustomerID, &b.QuoteID, &b.ServiceID, &b.Status, &b.StatusVersion,
		&b.PickupAt, &total, &b.Currency, &pricingJSON, &b.CreatedAt, &b.CancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(pricingJSON, &b.Pricing); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
		    status_version = status_version + 1,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to),
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListStalePending returns bookings still awaiting payment that were created before cutoff.
func (s *Store) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*Booking, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, status, status_version
		FROM bookings
		WHERE status = 'pending_payment' AND created_at < $1
		ORDER BY created_at
		LIMIT $2`, cutoff, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.Status, &b.StatusVersion); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
