package consumption

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, bogota)
}

func TestPolicyForSpan(t *testing.T) {
	cases := []struct {
		span    int
		allowed []Granularity
		def     Granularity
	}{
		{0, []Granularity{GranularityHour}, GranularityHour},
		{1, []Granularity{GranularityHour}, GranularityHour},
		{2, []Granularity{GranularityDay}, GranularityDay},
		{15, []Granularity{GranularityDay}, GranularityDay},
		{30, []Granularity{GranularityDay}, GranularityDay},
		{31, []Granularity{GranularityWeek, GranularityMonth}, GranularityWeek},
		{60, []Granularity{GranularityWeek, GranularityMonth}, GranularityWeek},
		{90, []Granularity{GranularityWeek, GranularityMonth}, GranularityWeek},
		{91, []Granularity{GranularityMonth}, GranularityMonth},
		{120, []Granularity{GranularityMonth}, GranularityMonth},
	}
	for _, tc := range cases {
		policy := PolicyForSpan(tc.span)
		if !reflect.DeepEqual(policy.Allowed, tc.allowed) || policy.Default != tc.def {
			t.Fatalf("span %d: expected %v/%s, got %v/%s", tc.span, tc.allowed, tc.def, policy.Allowed, policy.Default)
		}
	}
}

func TestResolveGranularity(t *testing.T) {
	if got := ResolveGranularity(60, GranularityMonth); got != GranularityMonth {
		t.Fatalf("expected month to be kept, got %s", got)
	}
	if got := ResolveGranularity(60, GranularityHour); got != GranularityWeek {
		t.Fatalf("expected fallback to week, got %s", got)
	}
	if got := ResolveGranularity(10, ""); got != GranularityDay {
		t.Fatalf("expected default day, got %s", got)
	}
}

func TestControllerForcesDefaultOnSpanChange(t *testing.T) {
	ctrl := NewController(bogota, GranularityDay)
	var seen []Transition
	ctrl.OnChange(func(tr Transition) { seen = append(seen, tr) })

	tr, err := ctrl.SetRange(day(2024, 3, 1), day(2024, 3, 1))
	if err != nil {
		t.Fatalf("set range: %v", err)
	}
	if !tr.Forced || tr.To != GranularityHour || ctrl.Granularity() != GranularityHour {
		t.Fatalf("expected forced switch to hour, got %+v", tr)
	}

	tr, err = ctrl.SetRange(day(2024, 3, 1), day(2024, 3, 16))
	if err != nil {
		t.Fatalf("set range: %v", err)
	}
	if !tr.Forced || tr.To != GranularityDay || tr.Span != 15 {
		t.Fatalf("expected forced switch to day, got %+v", tr)
	}
	if _, err := ctrl.Select(GranularityMonth); !errors.Is(err, ErrGranularityNotAllowed) {
		t.Fatalf("expected ErrGranularityNotAllowed, got %v", err)
	}

	tr, err = ctrl.SetRange(day(2024, 3, 1), day(2024, 4, 30))
	if err != nil {
		t.Fatalf("set range: %v", err)
	}
	if tr.Span != 60 || tr.To != GranularityWeek {
		t.Fatalf("expected week for 60 days, got %+v", tr)
	}
	if _, err := ctrl.Select(GranularityMonth); err != nil {
		t.Fatalf("select month: %v", err)
	}

	tr, err = ctrl.SetRange(day(2024, 3, 1), day(2024, 5, 31))
	if err != nil {
		t.Fatalf("set range: %v", err)
	}
	if tr.Forced || tr.To != GranularityMonth {
		t.Fatalf("expected month to be kept without forcing, got %+v", tr)
	}

	if len(seen) != 5 {
		t.Fatalf("expected 5 notifications, got %d", len(seen))
	}
}

func TestControllerRejectsInvalidRange(t *testing.T) {
	ctrl := NewController(bogota, GranularityDay)
	calls := 0
	ctrl.OnChange(func(Transition) { calls++ })

	if _, err := ctrl.SetRange(day(2024, 3, 10), day(2024, 3, 1)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no notification, got %d", calls)
	}
	if _, ok := ctrl.Range(); ok {
		t.Fatalf("expected no range to be stored")
	}
	if ctrl.Granularity() != GranularityDay {
		t.Fatalf("expected granularity untouched, got %s", ctrl.Granularity())
	}
}
