package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	billingapp "aquasmart-portal/internal/billing/application"
	consumptionapp "aquasmart-portal/internal/consumption/application"
	"aquasmart-portal/internal/observability/metrics"
)

const (
	reportConsumption = "consumption"
	reportInvoices    = "invoices"
)

// Exporter renders reports into downloadable documents.
type Exporter struct {
	branding *BrandingStore
	loc      *time.Location
	now      func() time.Time
	logger   zerolog.Logger
}

// NewExporter constructs an exporter. A nil store prints the default letterhead.
func NewExporter(branding *BrandingStore, loc *time.Location, logger zerolog.Logger) *Exporter {
	if loc == nil {
		loc = time.Local
	}
	return &Exporter{branding: branding, loc: loc, now: time.Now, logger: logger}
}

// Consumption renders a consumption history in format.
func (e *Exporter) Consumption(format Format, subject consumptionapp.Subject, history consumptionapp.History) (Document, error) {
	start := time.Now()
	generatedAt := e.now().In(e.loc)
	base := fmt.Sprintf("consumo_%s_%s", history.Scope, history.SubjectID)

	var (
		body []byte
		err  error
	)
	switch {
	case history.Empty():
		err = ErrNothingToExport
	case format == FormatCSV:
		body, err = ConsumptionCSV(history)
	case format == FormatXLSX:
		body, err = ConsumptionWorkbook(subject, history, e.branding.Current(), generatedAt)
	case format == FormatPDF:
		body, err = ConsumptionPDF(subject, history, e.branding.Current(), generatedAt)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return e.finish(reportConsumption, format, base, generatedAt, start, body, err)
}

// Invoices renders an invoice report in format. CSV is not offered.
func (e *Exporter) Invoices(format Format, report billingapp.Report) (Document, error) {
	start := time.Now()
	generatedAt := e.now().In(e.loc)
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = generatedAt
	}

	var (
		body []byte
		err  error
	)
	switch {
	case report.Empty():
		err = ErrNothingToExport
	case format == FormatXLSX:
		body, err = InvoiceWorkbook(report, e.branding.Current())
	case format == FormatPDF:
		body, err = InvoicePDF(report, e.branding.Current())
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return e.finish(reportInvoices, format, "facturas", generatedAt, start, body, err)
}

func (e *Exporter) finish(report string, format Format, base string, generatedAt, start time.Time, body []byte, err error) (Document, error) {
	duration := time.Since(start)
	if err != nil {
		result := metrics.ResultError
		if errors.Is(err, ErrNothingToExport) {
			result = metrics.ResultEmpty
		}
		metrics.ObserveExport(report, string(format), result, duration)
		e.logger.Warn().Err(err).Str("report", report).Str("format", string(format)).Msg("export failed")
		return Document{}, err
	}
	metrics.ObserveExport(report, string(format), metrics.ResultSuccess, duration)
	e.logger.Info().
		Str("report", report).
		Str("format", string(format)).
		Int("bytes", len(body)).
		Dur("duration", duration).
		Msg("export rendered")
	return Document{
		Filename:    Filename(base, format, generatedAt),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}
