package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Pricing.QuoteTTL != 30*time.Minute || cfg.Booking.ExpiryBatch != 100 {
		t.Errorf("unexpected defaults: %+v %+v", cfg.Pricing, cfg.Booking)
	}
	if cfg.Pricing.UseDBRates {
		t.Error("db rates should default off")
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("CHAUFFEUR_HTTP_ADDR", ":9090")
	t.Setenv("CHAUFFEUR_DB_RATES", "yes")
	t.Setenv("CHAUFFEUR_QUOTE_TTL", "5m")
	t.Setenv("CHAUFFEUR_EXPIRY_BATCH", "25")
	t.Setenv("CHAUFFEUR_PAYMENT_WINDOW", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Addr != ":9090" || !cfg.Pricing.UseDBRates || cfg.Pricing.QuoteTTL != 5*time.Minute || cfg.Booking.ExpiryBatch != 25 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.Booking.PaymentWindow != 30*time.Minute {
		t.Errorf("invalid duration should fall back, got %s", cfg.Booking.PaymentWindow)
	}
}
