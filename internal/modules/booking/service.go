// README: Booking service turns stored quotes into bookings and expires unpaid ones.
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"chauffeur/internal/config"
	"chauffeur/internal/modules/pricing"
	"chauffeur/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("booking not found")
	ErrConflict     = errors.New("booking state conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrQuoteExpired = errors.New("quote expired or unknown")
	ErrForbidden    = errors.New("booking belongs to another customer")

	ErrQuoteAlreadyBooked = errors.New("quote already booked")
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error)
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*Booking, error)
}

type Quotes interface {
	GetQuote(ctx context.Context, id types.ID) (*pricing.Quote, error)
	DiscardQuote(ctx context.Context, id types.ID) error
}

type Service struct {
	store  Repository
	quotes Quotes
	log    logrus.FieldLogger
	cfg    config.BookingConfig
}

func NewService(store Repository, quotes Quotes, cfg config.BookingConfig, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.ExpiryBatch <= 0 {
		cfg.ExpiryBatch = 100
	}
	return &Service{store: store, quotes: quotes, cfg: cfg, log: log}
}

type ConfirmCommand struct {
	QuoteID    types.ID
	CustomerID string
}

type CancelCommand struct {
	BookingID  types.ID
	CustomerID string
}

func (s *Service) Confirm(ctx context.Context, cmd ConfirmCommand) (*Booking, error) {
	if cmd.QuoteID == "" || cmd.CustomerID == "" {
		return nil, ErrBadRequest
	}
	q, err := s.quotes.GetQuote(ctx, cmd.QuoteID)
	if errors.Is(err, pricing.ErrQuoteNotFound) {
		return nil, ErrQuoteExpired
	}
	if err != nil {
		return nil, err
	}

	b := &Booking{
		ID:          types.NewID(),
		CustomerID:  cmd.CustomerID,
		QuoteID:     q.ID,
		ServiceID:   q.Result.ServiceID,
		Status:      StatusPendingPayment,
		PickupAt:    q.PickupAt,
		TotalAmount: q.Result.TotalAmount,
		Currency:    q.Result.Currency,
		Pricing:     q.Result,
		CreatedAt:   time.Now().UTC(),
	}
	err = s.store.Create(ctx, b)
	if errors.Is(err, ErrQuoteAlreadyBooked) {
		// an earlier confirm won; retire the quote it left behind
		s.discardQuote(ctx, q.ID)
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	s.discardQuote(ctx, q.ID)
	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"quote_id":   q.ID,
		"total":      b.TotalAmount.StringFixed(2),
	}).Info("booking created")
	return b, nil
}

func (s *Service) discardQuote(ctx context.Context, id types.ID) {
	if err := s.quotes.DiscardQuote(ctx, id); err != nil {
		s.log.WithError(err).WithField("quote_id", id).Warn("discard booked quote")
	}
}

func (s *Service) Get(ctx context.Context, id types.ID, customerID string) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return err
	}
	if b.CustomerID != cmd.CustomerID {
		return ErrForbidden
	}
	return s.transition(ctx, b, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, b *Booking, to Status) error {
	if !CanTransition(b.Status, to) {
		return ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, b.ID, b.Status, to, b.StatusVersion)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// ExpireUnpaid cancels bookings that stayed in pending_payment longer than the payment window.
func (s *Service) ExpireUnpaid(ctx context.Context, now time.Time) (int, error) {
	stale, err := s.store.ListStalePending(ctx, now.Add(-s.cfg.PaymentWindow), s.cfg.ExpiryBatch)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, b := range stale {
		err := s.transition(ctx, b, StatusCancelled)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Service) RunExpiryMonitor(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.ExpireUnpaid(ctx, now)
			if err != nil {
				s.log.WithError(err).Error("expire unpaid bookings")
				continue
			}
			if n > 0 {
				s.log.WithField("count", n).Info("expired unpaid bookings")
			}
		}
	}
}
