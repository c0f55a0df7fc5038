package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSelectBlockTier(t *testing.T) {
	tiers := []DiscountTier{
		{MinHours: 8, MaxHours: ptr(20.0), Percentage: dec("10")},
		{MinHours: 20, MaxHours: ptr(40.0), Percentage: dec("15")},
		{MinHours: 40, Percentage: dec("20")},
		{MinHours: 20, Percentage: dec("99")},
	}
	tests := []struct {
		hours float64
		want  string
	}{
		{7.5, ""},
		{8, "10"},
		{19.5, "10"},
		{20, "15"},
		{40, "20"},
		{100, "20"},
	}
	for _, tt := range tests {
		got, ok := SelectBlockTier(tt.hours, tiers)
		if tt.want == "" {
			if ok {
				t.Errorf("%.1fh: matched %+v", tt.hours, got)
			}
			continue
		}
		if !ok || !got.Percentage.Equal(dec(tt.want)) {
			t.Errorf("%.1fh: got %s (ok=%v), want %s", tt.hours, got.Percentage, ok, tt.want)
		}
	}
}

func TestMembershipPercentage(t *testing.T) {
	table := testCard().Memberships
	if got := MembershipPercentage(TierVIP, table); !got.Equal(dec("20")) {
		t.Errorf("vip = %s", got)
	}
	for _, tier := range []MembershipTier{"", TierFree, TierStudent, "platinum"} {
		if got := MembershipPercentage(tier, table); !got.IsZero() {
			t.Errorf("%q = %s, want 0", tier, got)
		}
	}
}

func TestMatchBundle(t *testing.T) {
	bundles := []Bundle{
		{Name: "arrival", ServiceTypes: []string{"transfer", "chauffeur"}, MinimumServices: 2, Percentage: dec("10")},
		{Name: "event", ServiceTypes: []string{"security", "chauffeur"}, MinimumServices: 2, Percentage: dec("15")},
		{Name: "any_tour", ServiceTypes: []string{"tours"}, Percentage: dec("5")},
	}
	tests := []struct {
		name string
		in   []string
		want string
	}{
		{"none requested", nil, ""},
		{"one service only", []string{"chauffeur"}, ""},
		{"first declared wins", []string{"security", "chauffeur", "transfer"}, "arrival"},
		{"second bundle", []string{"SECURITY", "chauffeur"}, "event"},
		{"zero minimum counts as one", []string{"tours"}, "any_tour"},
		{"duplicates count once", []string{"transfer", "transfer"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchBundle(tt.in, bundles)
			if tt.want == "" {
				if ok {
					t.Errorf("matched %s", got.Name)
				}
				return
			}
			if !ok || got.Name != tt.want {
				t.Errorf("got %q (ok=%v), want %q", got.Name, ok, tt.want)
			}
		})
	}
}

func TestCorporateDiscount(t *testing.T) {
	table := testCard().Corporate
	if _, ok := CorporateDiscount(nil, table); ok {
		t.Error("nil account should not match")
	}
	if _, ok := CorporateDiscount(ptr(""), table); ok {
		t.Error("empty account should not match")
	}
	if _, ok := CorporateDiscount(ptr("OLD"), table); ok {
		t.Error("inactive account should not match")
	}
	if _, ok := CorporateDiscount(ptr("NOBODY"), table); ok {
		t.Error("unknown account should not match")
	}
	got, ok := CorporateDiscount(ptr("ACME"), table)
	if !ok || !got.Percentage.Equal(dec("12")) {
		t.Errorf("ACME = %+v (ok=%v)", got, ok)
	}
}

func TestGroupSurchargeRate(t *testing.T) {
	g := GroupSurcharge{Threshold: 4, Step: dec("0.1")}
	tests := []struct {
		passengers int
		want       string
	}{
		{1, "0"}, {4, "0"}, {5, "0.1"}, {6, "0.2"}, {12, "0.8"},
	}
	for _, tt := range tests {
		if got := GroupSurchargeRate(tt.passengers, g); !got.Equal(dec(tt.want)) {
			t.Errorf("%d passengers = %s, want %s", tt.passengers, got, tt.want)
		}
	}
	if got := GroupSurchargeRate(10, GroupSurcharge{}); !got.IsZero() {
		t.Errorf("disabled surcharge = %s", got)
	}
}

func TestComplianceFee(t *testing.T) {
	card := testCard()
	fee, level, ok := ComplianceFee(card.Services["security"], card.CategoryRisk, card.ComplianceFees)
	if !ok || level != RiskHigh || !fee.Equal(dec("200")) {
		t.Errorf("security = %s %s %v", fee, level, ok)
	}
	if _, _, ok := ComplianceFee(card.Services["chauffeur"], card.CategoryRisk, card.ComplianceFees); ok {
		t.Error("service without SIA requirement should carry no fee")
	}
	if _, _, ok := ComplianceFee(card.Services["stewards"], card.CategoryRisk, card.ComplianceFees); ok {
		t.Error("unrated category should carry no fee")
	}
	spec := card.Services["security"]
	spec.Category = "chauffeur"
	spec.RequiresSIA = true
	fee, level, ok = ComplianceFee(spec, card.CategoryRisk, map[RiskLevel]decimal.Decimal{})
	if ok || level != RiskLow || !fee.IsZero() {
		t.Errorf("missing fee = %s %s %v", fee, level, ok)
	}
}

func TestComposeTotal(t *testing.T) {
	tests := []struct {
		subtotal, vat, wantVAT, wantTotal string
	}{
		{"195", "20", "39", "234"},
		{"350.06", "20", "70.01", "420.07"},
		{"0", "20", "0", "0"},
		{"-10", "20", "0", "0"},
		{"100", "0", "0", "100"},
	}
	for _, tt := range tests {
		vat, total := ComposeTotal(dec(tt.subtotal), dec(tt.vat))
		if !vat.Equal(dec(tt.wantVAT)) || !total.Equal(dec(tt.wantTotal)) {
			t.Errorf("ComposeTotal(%s, %s) = %s, %s; want %s, %s", tt.subtotal, tt.vat, vat, total, tt.wantVAT, tt.wantTotal)
		}
	}
}

func TestCurrencyTable_Convert(t *testing.T) {
	table := testCard().Currencies

	got, err := table.Convert(dec("100"), "GBP", "EUR")
	if err != nil || !got.Equal(dec("117")) {
		t.Errorf("GBP->EUR = %s, %v", got, err)
	}
	got, err = table.Convert(dec("117"), "eur", "gbp")
	if err != nil || !got.Equal(dec("100")) {
		t.Errorf("EUR->GBP = %s, %v", got, err)
	}
	got, err = table.Convert(dec("42.5"), "USD", "USD")
	if err != nil || !got.Equal(dec("42.5")) {
		t.Errorf("USD->USD = %s, %v", got, err)
	}

	_, err = table.Convert(dec("100"), "GBP", "JPY")
	if !errors.Is(err, ErrUnsupportedCurrency) {
		t.Errorf("GBP->JPY err = %v", err)
	}
	var ce *CurrencyError
	if !errors.As(err, &ce) || ce.Code != "JPY" {
		t.Errorf("err = %v, want CurrencyError for JPY", err)
	}
	if _, err := table.Convert(dec("100"), "XXX", "GBP"); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Errorf("XXX->GBP err = %v", err)
	}
	if table.Supports("JPY") || !table.Supports("usd") {
		t.Error("Supports mismatch")
	}
}

func TestCurrencyTable_RoundTrip(t *testing.T) {
	table := testCard().Currencies
	tolerance := dec("0.000001")
	codes := []string{"GBP", "EUR", "USD"}
	for _, x := range []string{"0.01", "123.45", "99999.99"} {
		amount := dec(x)
		for _, a := range codes {
			for _, b := range codes {
				there, err := table.Convert(amount, a, b)
				if err != nil {
					t.Fatal(err)
				}
				back, err := table.Convert(there, b, a)
				if err != nil {
					t.Fatal(err)
				}
				if back.Sub(amount).Abs().GreaterThan(tolerance) {
					t.Errorf("%s %s->%s->%s = %s", x, a, b, a, back)
				}
			}
		}
	}
}
