package consumption

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var monthAbbrev = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

// zone-less layouts are interpreted in the caller's location.
var localTimestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	dateLayout,
}

// DateRange is an inclusive calendar range. End covers the whole day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange validates and normalizes a range to midnight boundaries in loc.
func NewDateRange(start, end time.Time, loc *time.Location) (DateRange, error) {
	if start.IsZero() || end.IsZero() {
		return DateRange{}, ErrEmptyRange
	}
	if loc == nil {
		loc = time.Local
	}
	start = truncateToDay(start.In(loc))
	end = truncateToDay(end.In(loc))
	if start.After(end) {
		return DateRange{}, ErrInvalidRange
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseDateRange parses two YYYY-MM-DD dates into a range.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return DateRange{}, ErrEmptyRange
	}
	from, err := ParseDate(start, loc)
	if err != nil {
		return DateRange{}, err
	}
	to, err := ParseDate(end, loc)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(from, to, loc)
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return parsed, nil
}

// EndOfDay is the last instant included in the range (23:59:59.999).
func (r DateRange) EndOfDay() time.Time {
	return time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 23, 59, 59, int(999*time.Millisecond), r.End.Location())
}

// Contains reports whether t falls within [Start, EndOfDay].
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.EndOfDay())
}

// SpanDays returns the number of calendar days between Start and End.
func (r DateRange) SpanDays() int {
	return daysBetween(r.Start, r.End)
}

// String renders the range as it appears in export headers.
func (r DateRange) String() string {
	return r.Start.Format(dateLayout) + " - " + r.End.Format(dateLayout)
}

// ParseTimestamp parses an ISO-8601 reading timestamp. Zone-less values are read in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	if loc == nil {
		loc = time.Local
	}
	if parsed, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return parsed.In(loc), nil
	}
	for _, layout := range localTimestampLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// BucketKey returns the label of the calendar unit containing t.
func BucketKey(t time.Time, g Granularity) (string, error) {
	switch g {
	case GranularityHour:
		return fmt.Sprintf("%02d:00", t.Hour()), nil
	case GranularityDay:
		return fmt.Sprintf("%d %s %d", t.Day(), MonthAbbrev(t.Month()), t.Year()), nil
	case GranularityWeek:
		return fmt.Sprintf("Sem %d %d", WeekOfYear(t), t.Year()), nil
	case GranularityMonth:
		return fmt.Sprintf("%s %d", MonthAbbrev(t.Month()), t.Year()), nil
	default:
		return "", ErrInvalidGranularity
	}
}

// MonthAbbrev returns the Spanish three letter month abbreviation.
func MonthAbbrev(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthAbbrev[m-1]
}

// WeekOfYear numbers Sunday-started weeks from January 1st:
// ceil((daysSinceJan1 + jan1Weekday + 1) / 7).
func WeekOfYear(t time.Time) int {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	elapsed := t.YearDay() - 1
	return int(math.Ceil(float64(elapsed+int(jan1.Weekday())+1) / 7))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysBetween(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours() / 24)
}
