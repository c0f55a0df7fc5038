// README: Pricing store backed by PostgreSQL; operator-edited rates overlaid on the file rate card.
package pricing

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) ListServices(ctx context.Context) (map[string]RateSpec, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, category, base_rate::text, day_rate::text,
		       minimum_hours, minimum_day_hours, callout_fee::text,
		       currency, requires_sia
		FROM services
		WHERE active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]RateSpec)
	for rows.Next() {
		var spec RateSpec
		var baseRate, calloutFee string
		var dayRate *string
		if err := rows.Scan(
			&spec.ServiceID, &spec.Category, &baseRate, &dayRate,
			&spec.MinimumHours, &spec.MinimumDayHours, &calloutFee,
			&spec.Currency, &spec.RequiresSIA,
		); err != nil {
			return nil, err
		}
		if spec.BaseRate, err = decimal.NewFromString(baseRate); err != nil {
			return nil, fmt.Errorf("service %s base_rate: %w", spec.ServiceID, err)
		}
		if spec.CalloutFee, err = decimal.NewFromString(calloutFee); err != nil {
			return nil, fmt.Errorf("service %s callout_fee: %w", spec.ServiceID, err)
		}
		if dayRate != nil {
			d, err := decimal.NewFromString(*dayRate)
			if err != nil {
				return nil, fmt.Errorf("service %s day_rate: %w", spec.ServiceID, err)
			}
			spec.DayRate = &d
		}
		out[spec.ServiceID] = spec
	}
	return out, rows.Err()
}

func (s *Store) ListVehiclePremiums(ctx context.Context) (map[string]decimal.Decimal, error) {
	return s.listAmounts(ctx, `SELECT id, hourly_premium::text FROM vehicles WHERE active`)
}

func (s *Store) ListDriverPremiums(ctx context.Context) (map[string]decimal.Decimal, error) {
	return s.listAmounts(ctx, `SELECT id, hourly_premium::text FROM drivers WHERE active`)
}

func (s *Store) ListExtras(ctx context.Context) (map[string]decimal.Decimal, error) {
	return s.listAmounts(ctx, `SELECT type, unit_price::text FROM extras WHERE active`)
}

func (s *Store) listAmounts(ctx context.Context, query string) (map[string]decimal.Decimal, error) {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out[key] = v
	}
	return out, rows.Err()
}
