package billing

import (
	"fmt"
	"strings"
	"time"
)

var creationDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// Date is a calendar date without time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d.ordinal() < other.ordinal() }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d.ordinal() > other.ordinal() }

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) ordinal() int { return d.Year*10000 + int(d.Month)*100 + d.Day }

// DateOf strips the time of day from t.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate reads the calendar date of value. Timestamps carrying a zone are
// converted to loc first; date-only values are taken literally.
func ParseDate(value string, loc *time.Location) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, ErrInvalidDateFilter
	}
	if loc == nil {
		loc = time.Local
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return DateOf(parsed.In(loc)), nil
	}
	for _, layout := range creationDateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return DateOf(parsed), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateFilter, value)
}

// Filter holds the invoice list predicates. Zero values match everything.
type Filter struct {
	Code     string
	Lot      string
	Document string
	Status   string
	From     Date
	To       Date
}

// Validate checks the date bounds.
func (f Filter) Validate() error {
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return ErrInvalidDateRange
	}
	return nil
}

// HasDateBounds reports whether stage one is active.
func (f Filter) HasDateBounds() bool { return !f.From.IsZero() || !f.To.IsZero() }

// Apply runs both stages: creation date first, then the text predicates.
func (f Filter) Apply(invoices []Invoice, loc *time.Location) []Invoice {
	return f.MatchText(f.ByCreationDate(invoices, loc))
}

// ByCreationDate keeps invoices created within [From, To], both inclusive,
// comparing calendar dates only. Invoices without a parseable creation date
// are dropped when a bound is set.
func (f Filter) ByCreationDate(invoices []Invoice, loc *time.Location) []Invoice {
	if !f.HasDateBounds() {
		return invoices
	}
	kept := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		created, err := ParseDate(inv.CreationDate, loc)
		if err != nil {
			continue
		}
		if !f.From.IsZero() && created.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && created.After(f.To) {
			continue
		}
		kept = append(kept, inv)
	}
	return kept
}

// MatchText applies the case-insensitive substring and status predicates.
func (f Filter) MatchText(invoices []Invoice) []Invoice {
	code := normalize(f.Code)
	lot := normalize(f.Lot)
	document := normalize(f.Document)
	status := normalize(f.Status)
	if code == "" && lot == "" && document == "" && status == "" {
		return invoices
	}

	kept := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if code != "" && !strings.Contains(normalize(inv.Code), code) {
			continue
		}
		if lot != "" && !strings.Contains(normalize(inv.LotCode), lot) && !strings.Contains(normalize(inv.Lot), lot) {
			continue
		}
		if document != "" && !strings.Contains(normalize(inv.ClientDocument), document) {
			continue
		}
		if status != "" && normalize(inv.Status) != status {
			continue
		}
		kept = append(kept, inv)
	}
	return kept
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
