package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"aquasmart-portal/internal/backend"
	billing "aquasmart-portal/internal/billing/domain"
)

// InvoiceReader loads the invoices visible to the caller.
type InvoiceReader interface {
	Invoices(ctx context.Context) ([]backend.Invoice, error)
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Query is the raw invoice filter as received from a caller.
type Query struct {
	Code     string
	Lot      string
	Document string
	Status   string
	From     string
	To       string
}

// Report is a filtered invoice listing with its totals.
type Report struct {
	Filter      billing.Filter    `json:"-"`
	From        string            `json:"from,omitempty"`
	To          string            `json:"to,omitempty"`
	Invoices    []billing.Invoice `json:"invoices"`
	Summary     billing.Summary   `json:"summary"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Empty reports whether no invoice survived the filter.
func (r Report) Empty() bool { return len(r.Invoices) == 0 }

// Service lists and totals invoices.
type Service struct {
	loc    *time.Location
	clock  Clock
	logger zerolog.Logger
}

// NewService constructs the invoice service.
func NewService(loc *time.Location, clock Clock, logger zerolog.Logger) (*Service, error) {
	if loc == nil {
		return nil, errors.New("invoice service: nil location")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{loc: loc, clock: clock, logger: logger}, nil
}

// ParseQuery validates q and turns it into a domain filter.
func (s *Service) ParseQuery(q Query) (billing.Filter, error) {
	filter := billing.Filter{
		Code:     strings.TrimSpace(q.Code),
		Lot:      strings.TrimSpace(q.Lot),
		Document: strings.TrimSpace(q.Document),
		Status:   strings.TrimSpace(q.Status),
	}
	if strings.TrimSpace(q.From) != "" {
		from, err := billing.ParseDate(q.From, s.loc)
		if err != nil {
			return billing.Filter{}, err
		}
		filter.From = from
	}
	if strings.TrimSpace(q.To) != "" {
		to, err := billing.ParseDate(q.To, s.loc)
		if err != nil {
			return billing.Filter{}, err
		}
		filter.To = to
	}
	if err := filter.Validate(); err != nil {
		return billing.Filter{}, err
	}
	return filter, nil
}

// List fetches the invoices and applies filter.
func (s *Service) List(ctx context.Context, reader InvoiceReader, filter billing.Filter) ([]billing.Invoice, error) {
	if reader == nil {
		return nil, errors.New("invoice service: nil reader")
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	raw, err := reader.Invoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch invoices: %w", err)
	}
	invoices := make([]billing.Invoice, 0, len(raw))
	for _, inv := range raw {
		invoices = append(invoices, FromBackend(inv))
	}
	kept := filter.Apply(invoices, s.loc)
	s.logger.Debug().
		Int("fetched", len(invoices)).
		Int("kept", len(kept)).
		Msg("invoices filtered")
	return kept, nil
}

// Report lists the filtered invoices and totals them per status.
func (s *Service) Report(ctx context.Context, reader InvoiceReader, filter billing.Filter) (Report, error) {
	invoices, err := s.List(ctx, reader, filter)
	if err != nil {
		return Report{}, err
	}
	summary := billing.Summarize(invoices)
	if summary.Unknown > 0 {
		s.logger.Warn().Int("count", summary.Unknown).Msg("invoices with unknown status left out of totals")
	}
	return Report{
		Filter:      filter,
		From:        filter.From.String(),
		To:          filter.To.String(),
		Invoices:    invoices,
		Summary:     summary,
		GeneratedAt: s.clock.Now().In(s.loc),
	}, nil
}

// FromBackend converts a backend invoice into the domain record.
func FromBackend(inv backend.Invoice) billing.Invoice {
	return billing.Invoice{
		Code:           strings.TrimSpace(string(inv.Code)),
		LotCode:        strings.TrimSpace(string(inv.LotCode)),
		Lot:            strings.TrimSpace(string(inv.Lot)),
		PropertyID:     strings.TrimSpace(string(inv.PropertyID)),
		ClientDocument: strings.TrimSpace(string(inv.ClientDocument)),
		ClientName:     strings.TrimSpace(inv.ClientName),
		Status:         strings.TrimSpace(inv.Status),
		TotalAmount:    strings.TrimSpace(string(inv.TotalAmount)),
		CreationDate:   strings.TrimSpace(inv.CreationDate),
		DuePaymentDate: strings.TrimSpace(inv.DuePaymentDate),
	}
}
