package pricing

import (
	"context"
	"fmt"
)

// RateSource yields the rate card for one calculation.
type RateSource interface {
	Load(ctx context.Context) (*RateCard, error)
}

// StaticRates serves a card loaded once at startup.
type StaticRates struct {
	Card *RateCard
}

func (s StaticRates) Load(context.Context) (*RateCard, error) {
	return s.Card, nil
}

// DBRates overlays the services, premiums and extras stored in Postgres on a base card.
type DBRates struct {
	Base  *RateCard
	Store *Store
}

func (s DBRates) Load(ctx context.Context) (*RateCard, error) {
	services, err := s.Store.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	vehicles, err := s.Store.ListVehiclePremiums(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vehicles: %w", err)
	}
	drivers, err := s.Store.ListDriverPremiums(ctx)
	if err != nil {
		return nil, fmt.Errorf("load drivers: %w", err)
	}
	extras, err := s.Store.ListExtras(ctx)
	if err != nil {
		return nil, fmt.Errorf("load extras: %w", err)
	}
	card := s.Base.Overlay(services, vehicles, drivers, extras)
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}
