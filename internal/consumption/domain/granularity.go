package consumption

import "strings"

// Granularity is the calendar unit used for bucketing readings.
type Granularity string

const (
	GranularityHour  Granularity = "hour"
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// IsValid checks if the granularity is one of the supported values.
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityHour, GranularityDay, GranularityWeek, GranularityMonth:
		return true
	default:
		return false
	}
}

// Label returns the Spanish label shown next to the group-by selector.
func (g Granularity) Label() string {
	switch g {
	case GranularityHour:
		return "Hora"
	case GranularityDay:
		return "Día"
	case GranularityWeek:
		return "Semana"
	case GranularityMonth:
		return "Mes"
	default:
		return string(g)
	}
}

// ParseGranularity normalizes a user supplied granularity.
func ParseGranularity(value string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(value)))
	if !g.IsValid() {
		return "", ErrInvalidGranularity
	}
	return g, nil
}

// Policy describes which granularities are legal for a span of days.
type Policy struct {
	Allowed []Granularity
	Default Granularity
}

// Allows reports whether g is in the allowed set.
func (p Policy) Allows(g Granularity) bool {
	for _, allowed := range p.Allowed {
		if allowed == g {
			return true
		}
	}
	return false
}

// PolicyForSpan derives the legal granularities for a span measured in whole days.
//
//	0-1   -> hour
//	2-30  -> day
//	31-90 -> week, month (week by default)
//	>90   -> month
func PolicyForSpan(spanDays int) Policy {
	switch {
	case spanDays <= 1:
		return Policy{Allowed: []Granularity{GranularityHour}, Default: GranularityHour}
	case spanDays <= 30:
		return Policy{Allowed: []Granularity{GranularityDay}, Default: GranularityDay}
	case spanDays <= 90:
		return Policy{Allowed: []Granularity{GranularityWeek, GranularityMonth}, Default: GranularityWeek}
	default:
		return Policy{Allowed: []Granularity{GranularityMonth}, Default: GranularityMonth}
	}
}

// ResolveGranularity returns the requested granularity when the span allows it,
// otherwise the span's default. An empty request selects the default.
func ResolveGranularity(spanDays int, requested Granularity) Granularity {
	policy := PolicyForSpan(spanDays)
	if requested != "" && policy.Allows(requested) {
		return requested
	}
	return policy.Default
}
