package consumption

import "time"

// Transition describes a controller state change.
type Transition struct {
	Range  DateRange
	Span   int
	Policy Policy
	From   Granularity
	To     Granularity
	// Forced is set when the previous granularity was illegal for the new span.
	Forced bool
}

// Listener is notified synchronously after each state change.
type Listener func(Transition)

// Controller keeps the selected range and granularity consistent.
// The granularity is always a member of PolicyForSpan(span).
type Controller struct {
	loc         *time.Location
	rng         DateRange
	span        int
	hasRange    bool
	granularity Granularity
	listeners   []Listener
}

// NewController constructs a controller with an initial granularity preference.
func NewController(loc *time.Location, initial Granularity) *Controller {
	if loc == nil {
		loc = time.Local
	}
	if !initial.IsValid() {
		initial = GranularityDay
	}
	return &Controller{loc: loc, granularity: initial}
}

// OnChange registers a listener.
func (c *Controller) OnChange(fn Listener) {
	if fn == nil {
		return
	}
	c.listeners = append(c.listeners, fn)
}

// Granularity returns the current selection.
func (c *Controller) Granularity() Granularity { return c.granularity }

// Range returns the current range and whether one was set.
func (c *Controller) Range() (DateRange, bool) { return c.rng, c.hasRange }

// Policy returns the allowed set for the current span.
func (c *Controller) Policy() Policy { return PolicyForSpan(c.span) }

// SetRange applies a new range. An invalid range leaves the state untouched.
func (c *Controller) SetRange(start, end time.Time) (Transition, error) {
	rng, err := NewDateRange(start, end, c.loc)
	if err != nil {
		return Transition{}, err
	}
	span := rng.SpanDays()
	policy := PolicyForSpan(span)

	next := c.granularity
	if !c.hasRange || span != c.span {
		next = ResolveGranularity(span, c.granularity)
	}
	forced := next != c.granularity

	transition := Transition{
		Range:  rng,
		Span:   span,
		Policy: policy,
		From:   c.granularity,
		To:     next,
		Forced: forced,
	}
	c.rng = rng
	c.span = span
	c.hasRange = true
	c.granularity = next
	c.notify(transition)
	return transition, nil
}

// Select changes the granularity within the allowed set for the current span.
func (c *Controller) Select(g Granularity) (Transition, error) {
	if !g.IsValid() {
		return Transition{}, ErrInvalidGranularity
	}
	policy := PolicyForSpan(c.span)
	if c.hasRange && !policy.Allows(g) {
		return Transition{}, ErrGranularityNotAllowed
	}
	transition := Transition{
		Range:  c.rng,
		Span:   c.span,
		Policy: policy,
		From:   c.granularity,
		To:     g,
	}
	c.granularity = g
	c.notify(transition)
	return transition, nil
}

func (c *Controller) notify(t Transition) {
	for _, fn := range c.listeners {
		fn(t)
	}
}
