// README: Offline quote calculator; prices one request against a YAML rate card and prints the breakdown.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"chauffeur/internal/infra"
	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/types"
)

type extrasFlag []pricing.Extra

func (e *extrasFlag) String() string {
	parts := make([]string, 0, len(*e))
	for _, x := range *e {
		parts = append(parts, fmt.Sprintf("%s:%d", x.Type, x.Quantity))
	}
	return strings.Join(parts, ",")
}

// Set accepts type or type:quantity.
func (e *extrasFlag) Set(v string) error {
	kind, qty := v, 1
	if i := strings.LastIndex(v, ":"); i > 0 {
		kind = v[:i]
		if _, err := fmt.Sscanf(v[i+1:], "%d", &qty); err != nil {
			return fmt.Errorf("bad extra quantity %q", v)
		}
	}
	*e = append(*e, pricing.Extra{Type: kind, Quantity: qty})
	return nil
}

func main() {
	var (
		cardPath    = flag.String("card", "configs/ratecard.yaml", "rate card YAML path")
		serviceID   = flag.String("service", "executive_chauffeur", "service id")
		vehicleID   = flag.String("vehicle", "", "vehicle id")
		driverID    = flag.String("driver", "", "driver id")
		pickup      = flag.String("pickup", "", "pickup time, RFC3339 (default now)")
		hours       = flag.Float64("hours", 0, "requested hours")
		bookingType = flag.String("type", string(pricing.BookingHourly), "booking type")
		membership  = flag.String("membership", string(pricing.TierFree), "membership tier")
		passengers  = flag.Int("passengers", 1, "passenger count")
		services    = flag.String("services", "", "comma-separated service types for bundle matching")
		corporate   = flag.String("corporate", "", "corporate account id")
		display     = flag.String("currency", "", "display currency")
		asJSON      = flag.Bool("json", false, "print the full result as JSON")
		logLevel    = flag.String("log-level", "warn", "log level")
		extras      extrasFlag
	)
	flag.Var(&extras, "extra", "add-on as type[:quantity], repeatable")
	flag.Parse()

	logger := infra.NewLogger(*logLevel, "text")
	logger.SetOutput(os.Stderr)

	card, err := pricing.LoadRateCardFile(*cardPath)
	if err != nil {
		logger.WithError(err).Fatal("load rate card")
	}

	at := time.Now()
	if *pickup != "" {
		at, err = time.Parse(time.RFC3339, *pickup)
		if err != nil {
			logger.WithError(err).Fatal("parse pickup")
		}
	}

	req := pricing.BookingRequest{
		ServiceID:          *serviceID,
		VehicleID:          optional(*vehicleID),
		DriverID:           optional(*driverID),
		PickupAt:           at,
		Hours:              *hours,
		BookingType:        pricing.BookingType(*bookingType),
		MembershipTier:     pricing.MembershipTier(*membership),
		PassengerCount:     *passengers,
		Extras:             extras,
		CorporateAccountID: optional(*corporate),
		DisplayCurrency:    optional(strings.ToUpper(*display)),
	}
	if *services != "" {
		req.ServiceTypes = strings.Split(*services, ",")
	}

	res, err := pricing.NewEngine(card, logger).Calculate(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(res)
		return
	}

	for _, line := range res.Breakdown {
		fmt.Printf("%-48s %12s  %s\n", line.Description, line.Amount.StringFixed(2), line.Kind)
	}
	fmt.Printf("%-48s %16s\n", "Total", types.NewMoney(res.TotalAmount, res.Currency))
	if res.Display != nil {
		fmt.Printf("%-48s %16s\n", "Display total", types.NewMoney(res.Display.Amount, res.Display.Currency))
	}
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
