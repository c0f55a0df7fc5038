// README: Pricing service loads rates, prices requests and keeps quotes until they are booked.
package pricing

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"chauffeur/internal/types"
)

type QuoteRepository interface {
	Save(ctx context.Context, q *Quote) error
	Get(ctx context.Context, id types.ID) (*Quote, error)
	Delete(ctx context.Context, id types.ID) error
	TTL() time.Duration
}

// RouteEstimator returns the expected driving time between two addresses.
type RouteEstimator interface {
	DriveTime(ctx context.Context, origin, destination string) (time.Duration, error)
}

type Quote struct {
	ID          types.ID      `json:"id"`
	BookingType BookingType   `json:"booking_type"`
	PickupAt    time.Time     `json:"pickup_at"`
	Passengers  int           `json:"passengers"`
	Result      PricingResult `json:"result"`
	CreatedAt   time.Time     `json:"created_at"`
	ExpiresAt   *time.Time    `json:"expires_at,omitempty"`
}

type QuoteCommand struct {
	Request        BookingRequest
	PickupAddress  string
	DropoffAddress string
}

type Service struct {
	rates  RateSource
	quotes QuoteRepository
	route  RouteEstimator
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewService(rates RateSource, quotes QuoteRepository, route RouteEstimator, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{rates: rates, quotes: quotes, route: route, log: log, now: time.Now}
}

func (s *Service) Quote(ctx context.Context, cmd QuoteCommand) (Quote, error) {
	card, err := s.rates.Load(ctx)
	if err != nil {
		return Quote{}, err
	}

	req := cmd.Request
	if req.BookingType == BookingAirportTransfer && req.Hours == 0 &&
		s.route != nil && cmd.PickupAddress != "" && cmd.DropoffAddress != "" {
		d, err := s.route.DriveTime(ctx, cmd.PickupAddress, cmd.DropoffAddress)
		if err != nil {
			s.log.WithError(err).Warn("route estimate failed, billing minimum hours")
		} else {
			req.Hours = billableHours(d)
		}
	}

	res, err := NewEngine(card, s.log).Calculate(req)
	if err != nil {
		return Quote{}, err
	}

	now := s.now().UTC()
	q := Quote{
		ID:          types.NewID(),
		BookingType: req.BookingType,
		PickupAt:    req.PickupAt,
		Passengers:  req.PassengerCount,
		Result:      res,
		CreatedAt:   now,
	}
	if s.quotes != nil {
		exp := now.Add(s.quotes.TTL())
		q.ExpiresAt = &exp
		if err := s.quotes.Save(ctx, &q); err != nil {
			return Quote{}, err
		}
	}
	s.log.WithFields(logrus.Fields{
		"quote_id":   q.ID,
		"service_id": res.ServiceID,
		"total":      res.TotalAmount.StringFixed(2),
		"currency":   res.Currency,
	}).Info("quote calculated")
	return q, nil
}

func (s *Service) GetQuote(ctx context.Context, id types.ID) (*Quote, error) {
	if s.quotes == nil {
		return nil, ErrQuoteNotFound
	}
	return s.quotes.Get(ctx, id)
}

// DiscardQuote removes a quote once it has been turned into a booking.
func (s *Service) DiscardQuote(ctx context.Context, id types.ID) error {
	if s.quotes == nil {
		return nil
	}
	return s.quotes.Delete(ctx, id)
}

func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	card, err := s.rates.Load(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return card.Currencies.Convert(amount, from, to)
}

// billableHours rounds a drive time up to the next quarter hour.
func billableHours(d time.Duration) float64 {
	quarters := math.Ceil(d.Minutes() / 15)
	return quarters / 4
}
