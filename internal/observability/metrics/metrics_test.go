package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestObserveBeforeInitIsNoop(t *testing.T) {
	if backendRequests != nil {
		t.Skip("metrics already registered by another test")
	}
	ObserveBackendRequest("login", ResultSuccess, time.Millisecond)
	ObserveExport("consumption", "csv", ResultSuccess, time.Millisecond)
	ObserveAggregation("day", 3, 1)
	IncRequestSubmitted("flow_request", ResultSuccess)
}

func TestObserveCounters(t *testing.T) {
	Init(nil, zerolog.Nop())
	Init(nil, zerolog.Nop())

	ObserveBackendRequest("invoices", ResultError, 10*time.Millisecond)
	if got := testutil.ToFloat64(backendRequests.WithLabelValues("invoices", ResultError)); got != 1 {
		t.Fatalf("expected 1 backend request, got %v", got)
	}

	ObserveExport("invoices", "pdf", "", time.Millisecond)
	if got := testutil.ToFloat64(exportTotal.WithLabelValues("invoices", "pdf", ResultSuccess)); got != 1 {
		t.Fatalf("expected 1 export, got %v", got)
	}

	ObserveAggregation("week", 12, 2)
	if got := testutil.ToFloat64(droppedReadings); got != 2 {
		t.Fatalf("expected 2 dropped readings, got %v", got)
	}

	IncRequestSubmitted("", "")
	if got := testutil.ToFloat64(requestsSubmitted.WithLabelValues("unknown", ResultSuccess)); got != 1 {
		t.Fatalf("expected 1 submitted request, got %v", got)
	}
}
