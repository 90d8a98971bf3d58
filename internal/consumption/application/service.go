package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"aquasmart-portal/internal/backend"
	consumption "aquasmart-portal/internal/consumption/domain"
	"aquasmart-portal/internal/observability/metrics"
)

// Notices shown alongside an empty history.
const (
	NoticeNoData    = "No hay datos de consumo para el rango seleccionado."
	NoticeNoHistory = "No se encontró historial de consumo para este elemento."
)

// ReadingSource loads raw flow readings for a subject.
type ReadingSource interface {
	FlowReadings(ctx context.Context, scope backend.Scope, id string, start, end time.Time) ([]backend.Measurement, error)
}

// SubjectSource loads the metadata printed in report info boxes.
type SubjectSource interface {
	Property(ctx context.Context, id string) (backend.Property, error)
	Lot(ctx context.Context, id string) (backend.Lot, error)
}

// Source is everything a full consumption report needs.
type Source interface {
	ReadingSource
	SubjectSource
}

// Query is a consumption history request as received from a caller.
type Query struct {
	Scope       string
	SubjectID   string
	Start       string
	End         string
	Granularity string
}

// History is the consumption view model.
type History struct {
	Scope       backend.Scope             `json:"scope"`
	SubjectID   string                    `json:"subject_id"`
	Range       consumption.DateRange     `json:"-"`
	Start       string                    `json:"start"`
	End         string                    `json:"end"`
	Granularity consumption.Granularity   `json:"granularity"`
	Label       string                    `json:"granularity_label"`
	Allowed     []consumption.Granularity `json:"allowed_granularities"`
	Buckets     []consumption.Bucket      `json:"buckets"`
	Total       float64                   `json:"total"`
	Statistics  consumption.Statistics    `json:"statistics"`
	Readings    int                       `json:"readings"`
	Dropped     int                       `json:"dropped"`
	Notice      string                    `json:"notice,omitempty"`
}

// Empty reports whether no bucket was produced.
func (h History) Empty() bool { return len(h.Buckets) == 0 }

// Field is one labelled line of a subject info box.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Subject describes the lot, property or district a report is about.
type Subject struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// GranularityOptions lists the granularities legal for a range.
type GranularityOptions struct {
	Start   string                    `json:"start"`
	End     string                    `json:"end"`
	Span    int                       `json:"span_days"`
	Allowed []consumption.Granularity `json:"allowed"`
	Default consumption.Granularity   `json:"default"`
}

// Service builds consumption histories.
type Service struct {
	aggregator *consumption.Aggregator
	logger     zerolog.Logger
}

// NewService constructs the consumption service.
func NewService(aggregator *consumption.Aggregator, logger zerolog.Logger) (*Service, error) {
	if aggregator == nil {
		return nil, errors.New("consumption service: nil aggregator")
	}
	return &Service{aggregator: aggregator, logger: logger}, nil
}

// Location returns the zone buckets are keyed in.
func (s *Service) Location() *time.Location { return s.aggregator.Location() }

// Options resolves the legal granularities for a raw range.
func (s *Service) Options(start, end string) (GranularityOptions, error) {
	rng, err := consumption.ParseDateRange(start, end, s.Location())
	if err != nil {
		return GranularityOptions{}, err
	}
	controller := consumption.NewController(s.Location(), "")
	transition, err := controller.SetRange(rng.Start, rng.End)
	if err != nil {
		return GranularityOptions{}, err
	}
	return GranularityOptions{
		Start:   rng.Start.Format(time.DateOnly),
		End:     rng.End.Format(time.DateOnly),
		Span:    transition.Span,
		Allowed: transition.Policy.Allowed,
		Default: transition.Policy.Default,
	}, nil
}

// History fetches the readings of one subject and aggregates them.
// Validation errors are returned before any backend call.
func (s *Service) History(ctx context.Context, src ReadingSource, q Query) (History, error) {
	if src == nil {
		return History{}, errors.New("consumption service: nil reading source")
	}
	scope, rng, granularity, err := s.resolve(q)
	if err != nil {
		return History{}, err
	}
	measurements, err := src.FlowReadings(ctx, scope, strings.TrimSpace(q.SubjectID), rng.Start, rng.EndOfDay())
	if err != nil {
		return History{}, fmt.Errorf("fetch flow readings: %w", err)
	}
	return s.build(scope, strings.TrimSpace(q.SubjectID), rng, granularity, measurements)
}

// Report fetches the subject metadata and the history concurrently.
func (s *Service) Report(ctx context.Context, src Source, q Query) (Subject, History, error) {
	if src == nil {
		return Subject{}, History{}, errors.New("consumption service: nil source")
	}
	if _, _, _, err := s.resolve(q); err != nil {
		return Subject{}, History{}, err
	}

	var (
		subject Subject
		history History
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		subject, err = s.Subject(gctx, src, q.Scope, q.SubjectID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.History(gctx, src, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return Subject{}, History{}, err
	}
	return subject, history, nil
}

// Subject loads the info box contents for a subject.
func (s *Service) Subject(ctx context.Context, src SubjectSource, rawScope, id string) (Subject, error) {
	scope, err := backend.ParseScope(rawScope)
	if err != nil {
		return Subject{}, err
	}
	id = strings.TrimSpace(id)
	switch scope {
	case backend.ScopeLot:
		lot, err := src.Lot(ctx, id)
		if err != nil {
			return Subject{}, fmt.Errorf("fetch lot: %w", err)
		}
		return Subject{
			Title: "Información del Lote",
			Fields: []Field{
				{Label: "ID Lote", Value: orDash(string(lot.ID))},
				{Label: "Nombre", Value: orDash(lot.Name)},
				{Label: "Predio", Value: orDash(string(lot.PropertyID))},
				{Label: "Tipo de cultivo", Value: orDash(lot.CropType)},
				{Label: "Estado", Value: activeLabel(lot.IsActive)},
			},
		}, nil
	case backend.ScopeProperty:
		property, err := src.Property(ctx, id)
		if err != nil {
			return Subject{}, fmt.Errorf("fetch property: %w", err)
		}
		return Subject{
			Title: "Información del Predio",
			Fields: []Field{
				{Label: "ID Predio", Value: orDash(string(property.ID))},
				{Label: "Nombre", Value: orDash(property.Name)},
				{Label: "Propietario", Value: orDash(property.OwnerName)},
				{Label: "Documento", Value: orDash(string(property.OwnerDocument))},
				{Label: "Dirección", Value: orDash(property.Address)},
				{Label: "Extensión", Value: orDash(string(property.Extension))},
			},
		}, nil
	default:
		return Subject{
			Title:  "Información del Distrito",
			Fields: []Field{{Label: "Distrito", Value: orDash(id)}},
		}, nil
	}
}

func (s *Service) resolve(q Query) (backend.Scope, consumption.DateRange, consumption.Granularity, error) {
	scope, err := backend.ParseScope(q.Scope)
	if err != nil {
		return "", consumption.DateRange{}, "", err
	}
	if strings.TrimSpace(q.SubjectID) == "" {
		return "", consumption.DateRange{}, "", ErrMissingSubject
	}
	rng, err := consumption.ParseDateRange(q.Start, q.End, s.Location())
	if err != nil {
		return "", consumption.DateRange{}, "", err
	}

	// A requested granularity that the span does not allow falls back to the
	// span default, the same switch a range change forces on the selection.
	var requested consumption.Granularity
	if raw := strings.TrimSpace(q.Granularity); raw != "" {
		requested, err = consumption.ParseGranularity(raw)
		if err != nil {
			return "", consumption.DateRange{}, "", err
		}
	}
	controller := consumption.NewController(s.Location(), requested)
	transition, err := controller.SetRange(rng.Start, rng.End)
	if err != nil {
		return "", consumption.DateRange{}, "", err
	}
	if transition.Forced && requested != "" {
		s.logger.Debug().
			Str("requested", string(requested)).
			Str("granularity", string(transition.To)).
			Int("span_days", transition.Span).
			Msg("granularity not allowed for range, using default")
	}
	return scope, rng, controller.Granularity(), nil
}

func (s *Service) build(scope backend.Scope, id string, rng consumption.DateRange, g consumption.Granularity, measurements []backend.Measurement) (History, error) {
	readings := make([]consumption.FlowReading, 0, len(measurements))
	for _, m := range measurements {
		if !m.FlowRate.Valid {
			s.logger.Warn().Str("timestamp", m.Timestamp).Msg("flow reading without flow rate skipped")
			continue
		}
		readings = append(readings, consumption.FlowReading{Timestamp: m.Timestamp, FlowRate: m.FlowRate.Value})
	}

	aggregation, err := s.aggregator.Aggregate(readings, rng, g)
	if err != nil {
		return History{}, err
	}
	for _, dropped := range aggregation.Dropped {
		s.logger.Warn().
			Int("index", dropped.Index).
			Str("timestamp", dropped.Reading.Timestamp).
			Err(dropped.Err).
			Msg("flow reading with unparseable timestamp dropped")
	}
	metrics.ObserveAggregation(string(g), len(aggregation.Buckets), len(aggregation.Dropped))

	history := History{
		Scope:       scope,
		SubjectID:   id,
		Range:       rng,
		Start:       rng.Start.Format(time.DateOnly),
		End:         rng.End.Format(time.DateOnly),
		Granularity: g,
		Label:       g.Label(),
		Allowed:     consumption.PolicyForSpan(rng.SpanDays()).Allowed,
		Buckets:     aggregation.Buckets,
		Total:       aggregation.Total,
		Statistics:  consumption.Summarize(aggregation.Buckets),
		Readings:    len(measurements),
		Dropped:     len(aggregation.Dropped),
	}
	switch {
	case len(measurements) == 0:
		history.Notice = NoticeNoHistory
	case aggregation.Empty():
		history.Notice = NoticeNoData
	}
	if history.Buckets == nil {
		history.Buckets = []consumption.Bucket{}
	}
	s.logger.Debug().
		Str("scope", string(scope)).
		Str("subject_id", id).
		Str("granularity", string(g)).
		Int("readings", len(measurements)).
		Int("buckets", len(history.Buckets)).
		Msg("consumption history built")
	return history, nil
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return strings.TrimSpace(value)
}

func activeLabel(active bool) string {
	if active {
		return "Activo"
	}
	return "Inactivo"
}
