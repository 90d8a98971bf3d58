package consumption

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"
	"time"
)

var bogota = time.FixedZone("COT", -5*60*60)

func mustRange(t *testing.T, start, end string) DateRange {
	t.Helper()
	rng, err := ParseDateRange(start, end, bogota)
	if err != nil {
		t.Fatalf("parse range: %v", err)
	}
	return rng
}

func sampleReadings() []FlowReading {
	return []FlowReading{
		{Timestamp: "2024-03-01T10:15:00-05:00", FlowRate: 1.5},
		{Timestamp: "2024-03-01T10:45:00-05:00", FlowRate: 2.5},
		{Timestamp: "2024-03-01T11:00:00-05:00", FlowRate: 1},
		{Timestamp: "2024-03-02T23:59:59-05:00", FlowRate: 4},
		{Timestamp: "2024-03-03T00:00:00-05:00", FlowRate: 100},
		{Timestamp: "not-a-date", FlowRate: 7},
	}
}

func TestAggregateByDayIncludesEndOfDay(t *testing.T) {
	agg := NewAggregator(bogota, 0)
	result, err := agg.Aggregate(sampleReadings(), mustRange(t, "2024-03-01", "2024-03-02"), GranularityDay)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(result.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(result.Buckets))
	}
	if result.Buckets[0].Key != "1 mar 2024" || result.Buckets[0].Sum != 5 {
		t.Fatalf("unexpected first bucket: %+v", result.Buckets[0])
	}
	if result.Buckets[1].Key != "2 mar 2024" || result.Buckets[1].Sum != 4 {
		t.Fatalf("unexpected second bucket: %+v", result.Buckets[1])
	}
	if result.Total != 9 || result.Matched != 4 {
		t.Fatalf("expected total 9 over 4 readings, got %v over %d", result.Total, result.Matched)
	}
	if len(result.Dropped) != 1 || result.Dropped[0].Index != 5 {
		t.Fatalf("expected the unparseable reading to be dropped, got %+v", result.Dropped)
	}
	if !errors.Is(result.Dropped[0].Err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", result.Dropped[0].Err)
	}
}

func TestAggregateByHourOrdersBySample(t *testing.T) {
	agg := NewAggregator(bogota, 0)
	result, err := agg.Aggregate(sampleReadings(), mustRange(t, "2024-03-01", "2024-03-02"), GranularityHour)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	keys := make([]string, 0, len(result.Buckets))
	for _, b := range result.Buckets {
		keys = append(keys, b.Key)
	}
	if !reflect.DeepEqual(keys, []string{"10:00", "11:00", "23:00"}) {
		t.Fatalf("unexpected keys: %v", keys)
	}
	if result.Buckets[0].Sum != 4 {
		t.Fatalf("expected 10:00 bucket to sum 4, got %v", result.Buckets[0].Sum)
	}
	want := time.Date(2024, 3, 1, 10, 15, 0, 0, bogota)
	if !result.Buckets[0].SampleTimestamp.Equal(want) {
		t.Fatalf("expected sample %s, got %s", want, result.Buckets[0].SampleTimestamp)
	}
}

func TestAggregateWeekAndMonthKeys(t *testing.T) {
	agg := NewAggregator(bogota, 0)
	rng := mustRange(t, "2024-03-01", "2024-03-02")

	week, err := agg.Aggregate(sampleReadings(), rng, GranularityWeek)
	if err != nil {
		t.Fatalf("aggregate week: %v", err)
	}
	if len(week.Buckets) != 1 || week.Buckets[0].Key != "Sem 9 2024" {
		t.Fatalf("unexpected week buckets: %+v", week.Buckets)
	}

	month, err := agg.Aggregate(sampleReadings(), rng, GranularityMonth)
	if err != nil {
		t.Fatalf("aggregate month: %v", err)
	}
	if len(month.Buckets) != 1 || month.Buckets[0].Key != "mar 2024" || month.Buckets[0].Sum != 9 {
		t.Fatalf("unexpected month buckets: %+v", month.Buckets)
	}
}

func TestAggregateNoReadingsInRange(t *testing.T) {
	agg := NewAggregator(bogota, 0)
	result, err := agg.Aggregate(sampleReadings(), mustRange(t, "2023-01-01", "2023-01-31"), GranularityDay)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !result.Empty() {
		t.Fatalf("expected empty aggregation, got %d buckets", len(result.Buckets))
	}
}

func TestAggregateTreatsNonFiniteFlowAsZero(t *testing.T) {
	agg := NewAggregator(bogota, 0)
	readings := []FlowReading{
		{Timestamp: "2024-03-01T10:00:00-05:00", FlowRate: 2},
		{Timestamp: "2024-03-01T11:00:00-05:00", FlowRate: math.NaN()},
		{Timestamp: "2024-03-01T12:00:00-05:00", FlowRate: math.Inf(1)},
	}
	result, err := agg.Aggregate(readings, mustRange(t, "2024-03-01", "2024-03-02"), GranularityDay)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if result.Total != 2 || len(result.Buckets) != 1 || result.Buckets[0].Sum != 2 {
		t.Fatalf("expected finite total 2, got total %v buckets %+v", result.Total, result.Buckets)
	}
}

func TestAggregateRejectsInvalidGranularity(t *testing.T) {
	agg := NewAggregator(bogota, 0)
	_, err := agg.Aggregate(sampleReadings(), mustRange(t, "2024-03-01", "2024-03-02"), Granularity("year"))
	if !errors.Is(err, ErrInvalidGranularity) {
		t.Fatalf("expected ErrInvalidGranularity, got %v", err)
	}
}

func TestAggregateSumMatchesFilteredReadings(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, bogota)
	readings := make([]FlowReading, 0, 500)
	for i := 0; i < 500; i++ {
		ts := base.Add(time.Duration(rnd.Intn(20*24*60)) * time.Minute)
		readings = append(readings, FlowReading{
			Timestamp: ts.Format(time.RFC3339),
			FlowRate:  math.Round(rnd.Float64()*1000) / 100,
		})
	}
	rng := mustRange(t, "2024-05-03", "2024-05-12")

	var want float64
	for _, r := range readings {
		ts, err := ParseTimestamp(r.Timestamp, bogota)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if !ts.Before(rng.Start) && !ts.After(rng.EndOfDay()) {
			want += r.FlowRate
		}
	}

	agg := NewAggregator(bogota, 0)
	result, err := agg.Aggregate(readings, rng, GranularityDay)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	var got float64
	for _, b := range result.Buckets {
		got += b.Sum
	}
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("expected bucket sum %v, got %v", want, got)
	}

	again, err := agg.Aggregate(readings, rng, GranularityDay)
	if err != nil {
		t.Fatalf("aggregate again: %v", err)
	}
	if !reflect.DeepEqual(result, again) {
		t.Fatalf("expected identical aggregation on identical input")
	}
}

func TestDownsampleStride(t *testing.T) {
	buckets := make([]Bucket, 120)
	for i := range buckets {
		buckets[i] = Bucket{Key: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02"), Sum: float64(i)}
	}
	sampled := Downsample(buckets, DefaultMaxPoints)
	if len(sampled) > DefaultMaxPoints {
		t.Fatalf("expected at most %d buckets, got %d", DefaultMaxPoints, len(sampled))
	}
	if len(sampled) != 40 {
		t.Fatalf("expected 40 buckets with stride 3, got %d", len(sampled))
	}
	if sampled[0] != buckets[0] {
		t.Fatalf("expected first bucket retained")
	}
	for i, b := range sampled {
		if b != buckets[i*3] {
			t.Fatalf("bucket %d is not the stride element: %+v", i, b)
		}
	}
	if got := Downsample(buckets[:50], DefaultMaxPoints); len(got) != 50 {
		t.Fatalf("expected no downsampling at the limit, got %d", len(got))
	}
}

func TestWeekOfYear(t *testing.T) {
	cases := []struct {
		day  time.Time
		want int
	}{
		{time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC), 1},
		{time.Date(2023, 1, 7, 12, 0, 0, 0, time.UTC), 1},
		{time.Date(2023, 1, 8, 12, 0, 0, 0, time.UTC), 2},
		{time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC), 1},
		{time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC), 2},
	}
	for _, tc := range cases {
		if got := WeekOfYear(tc.day); got != tc.want {
			t.Fatalf("week of %s: expected %d, got %d", tc.day.Format("2006-01-02"), tc.want, got)
		}
	}
}

func TestParseTimestampZoneless(t *testing.T) {
	ts, err := ParseTimestamp("2024-03-01 08:30:00", bogota)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ts.Hour() != 8 || ts.Location() != bogota {
		t.Fatalf("expected 08:30 in local zone, got %s", ts)
	}
	utc, err := ParseTimestamp("2024-03-01T13:30:00.250Z", bogota)
	if err != nil {
		t.Fatalf("parse utc: %v", err)
	}
	if utc.Hour() != 8 {
		t.Fatalf("expected conversion to local hour 8, got %d", utc.Hour())
	}
}

func TestSummarize(t *testing.T) {
	stats := Summarize([]Bucket{{Key: "a", Sum: 2}, {Key: "b", Sum: 6}, {Key: "c", Sum: 1}})
	if stats.Count != 3 || stats.Total != 9 || stats.Average != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.Max != 6 || stats.MaxKey != "b" || stats.Min != 1 || stats.MinKey != "c" {
		t.Fatalf("unexpected extremes: %+v", stats)
	}
}
