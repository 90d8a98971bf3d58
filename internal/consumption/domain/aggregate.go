package consumption

import (
	"math"
	"sort"
	"time"
)

// DefaultMaxPoints bounds the number of buckets handed to the chart.
const DefaultMaxPoints = 50

// FlowReading is a raw measurement as delivered by the backend.
type FlowReading struct {
	Timestamp string  `json:"timestamp"`
	FlowRate  float64 `json:"flow_rate"`
}

// Bucket is the summed flow for one calendar unit.
type Bucket struct {
	Key             string    `json:"key"`
	Sum             float64   `json:"sum"`
	SampleTimestamp time.Time `json:"sample_timestamp"`
}

// DroppedReading is a reading excluded because its timestamp could not be parsed.
type DroppedReading struct {
	Index   int
	Reading FlowReading
	Err     error
}

// Aggregation is the result of bucketing a set of readings.
type Aggregation struct {
	Granularity Granularity
	Buckets     []Bucket
	// Grouped is the bucket count before downsampling.
	Grouped int
	// Matched is the number of readings inside the range.
	Matched int
	// Total is the sum of every matched reading.
	Total   float64
	Dropped []DroppedReading
}

// Empty reports whether no reading fell inside the range.
func (a Aggregation) Empty() bool { return len(a.Buckets) == 0 }

// Aggregator groups readings into calendar buckets.
type Aggregator struct {
	loc       *time.Location
	maxPoints int
}

// NewAggregator constructs an Aggregator. maxPoints <= 0 selects DefaultMaxPoints.
func NewAggregator(loc *time.Location, maxPoints int) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	return &Aggregator{loc: loc, maxPoints: maxPoints}
}

// Location returns the zone used for bucket keys.
func (a *Aggregator) Location() *time.Location { return a.loc }

// Aggregate filters readings to rng, sums them per calendar unit of g and
// stride-samples the ordered buckets down to the configured maximum.
func (a *Aggregator) Aggregate(readings []FlowReading, rng DateRange, g Granularity) (Aggregation, error) {
	result, err := a.Group(readings, rng, g)
	if err != nil {
		return Aggregation{}, err
	}
	result.Buckets = Downsample(result.Buckets, a.maxPoints)
	return result, nil
}

// Group buckets readings without downsampling.
func (a *Aggregator) Group(readings []FlowReading, rng DateRange, g Granularity) (Aggregation, error) {
	if !g.IsValid() {
		return Aggregation{}, ErrInvalidGranularity
	}
	if rng.Start.After(rng.End) {
		return Aggregation{}, ErrInvalidRange
	}

	result := Aggregation{Granularity: g}
	index := make(map[string]int)
	buckets := make([]Bucket, 0)

	for i, reading := range readings {
		ts, err := ParseTimestamp(reading.Timestamp, a.loc)
		if err != nil {
			result.Dropped = append(result.Dropped, DroppedReading{Index: i, Reading: reading, Err: err})
			continue
		}
		if !rng.Contains(ts) {
			continue
		}
		key, err := BucketKey(ts, g)
		if err != nil {
			return Aggregation{}, err
		}
		rate := reading.FlowRate
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			rate = 0
		}
		result.Matched++
		result.Total += rate

		pos, ok := index[key]
		if !ok {
			index[key] = len(buckets)
			buckets = append(buckets, Bucket{Key: key, Sum: rate, SampleTimestamp: ts})
			continue
		}
		buckets[pos].Sum += rate
		if ts.Before(buckets[pos].SampleTimestamp) {
			buckets[pos].SampleTimestamp = ts
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].SampleTimestamp.Equal(buckets[j].SampleTimestamp) {
			return buckets[i].Key < buckets[j].Key
		}
		return buckets[i].SampleTimestamp.Before(buckets[j].SampleTimestamp)
	})
	result.Buckets = buckets
	result.Grouped = len(buckets)
	return result, nil
}

// Downsample keeps every ceil(len/maxPoints)-th bucket when len exceeds maxPoints.
func Downsample(buckets []Bucket, maxPoints int) []Bucket {
	if maxPoints <= 0 || len(buckets) <= maxPoints {
		return buckets
	}
	step := int(math.Ceil(float64(len(buckets)) / float64(maxPoints)))
	sampled := make([]Bucket, 0, maxPoints)
	for i := 0; i < len(buckets); i += step {
		sampled = append(sampled, buckets[i])
	}
	return sampled
}

// Statistics summarises a bucket series.
type Statistics struct {
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
	MaxKey  string  `json:"max_key,omitempty"`
	MinKey  string  `json:"min_key,omitempty"`
}

// Summarize computes descriptive statistics over buckets.
func Summarize(buckets []Bucket) Statistics {
	var stats Statistics
	if len(buckets) == 0 {
		return stats
	}
	stats.Count = len(buckets)
	stats.Max = buckets[0].Sum
	stats.Min = buckets[0].Sum
	stats.MaxKey = buckets[0].Key
	stats.MinKey = buckets[0].Key
	for _, bucket := range buckets {
		stats.Total += bucket.Sum
		if bucket.Sum > stats.Max {
			stats.Max = bucket.Sum
			stats.MaxKey = bucket.Key
		}
		if bucket.Sum < stats.Min {
			stats.Min = bucket.Sum
			stats.MinKey = bucket.Key
		}
	}
	stats.Average = stats.Total / float64(stats.Count)
	return stats
}
