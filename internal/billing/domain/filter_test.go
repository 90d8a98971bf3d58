package billing

import (
	"errors"
	"testing"
	"time"
)

var bogota = time.FixedZone("COT", -5*60*60)

func codes(invoices []Invoice) []string {
	out := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, inv.Code)
	}
	return out
}

func mustDate(t *testing.T, value string) Date {
	t.Helper()
	d, err := ParseDate(value, bogota)
	if err != nil {
		t.Fatalf("parse date %s: %v", value, err)
	}
	return d
}

func TestFilterByCreationDateInclusive(t *testing.T) {
	invoices := []Invoice{
		{Code: "A", CreationDate: "2024-03-01T23:30:00-05:00"},
		{Code: "B", CreationDate: "2024-03-10"},
		{Code: "C", CreationDate: "2024-03-15T00:00:01-05:00"},
		{Code: "D", CreationDate: "2024-03-16T06:00:00Z"},
		{Code: "E", CreationDate: "garbage"},
	}
	filter := Filter{From: mustDate(t, "2024-03-01"), To: mustDate(t, "2024-03-15")}
	got := codes(filter.ByCreationDate(invoices, bogota))
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestFilterUTCTimestampUsesLocalDate(t *testing.T) {
	// 2024-03-16T03:00Z is still March 15th in Bogotá.
	invoices := []Invoice{{Code: "X", CreationDate: "2024-03-16T03:00:00Z"}}
	filter := Filter{From: mustDate(t, "2024-03-15"), To: mustDate(t, "2024-03-15")}
	if got := filter.ByCreationDate(invoices, bogota); len(got) != 1 {
		t.Fatalf("expected invoice kept, got %v", codes(got))
	}
}

func TestFilterMatchText(t *testing.T) {
	invoices := []Invoice{
		{Code: "FAC-001", LotCode: "1234567-001", ClientDocument: "1109420278", Status: "pagada"},
		{Code: "FAC-002", LotCode: "1234567-002", ClientDocument: "5551234", Status: "Pendiente"},
		{Code: "fac-003", Lot: "88", ClientDocument: "1109000000", Status: "vencida"},
	}

	if got := codes(Filter{Code: "fac-00"}.MatchText(invoices)); len(got) != 3 {
		t.Fatalf("expected case-insensitive code match, got %v", got)
	}
	if got := codes(Filter{Lot: "-002"}.MatchText(invoices)); len(got) != 1 || got[0] != "FAC-002" {
		t.Fatalf("unexpected lot match %v", got)
	}
	if got := codes(Filter{Lot: "88"}.MatchText(invoices)); len(got) != 1 || got[0] != "fac-003" {
		t.Fatalf("expected lot field match, got %v", got)
	}
	if got := codes(Filter{Document: "1109", Status: "PAGADA"}.MatchText(invoices)); len(got) != 1 || got[0] != "FAC-001" {
		t.Fatalf("unexpected combined match %v", got)
	}
	if got := codes(Filter{Status: "pendiente"}.MatchText(invoices)); len(got) != 1 || got[0] != "FAC-002" {
		t.Fatalf("unexpected status match %v", got)
	}
}

func TestFilterApplyRunsBothStages(t *testing.T) {
	invoices := []Invoice{
		{Code: "A", Status: "pagada", CreationDate: "2024-01-05"},
		{Code: "B", Status: "pagada", CreationDate: "2024-02-05"},
		{Code: "C", Status: "vencida", CreationDate: "2024-02-06"},
	}
	filter := Filter{Status: "pagada", From: mustDate(t, "2024-02-01")}
	got := codes(filter.Apply(invoices, bogota))
	if len(got) != 1 || got[0] != "B" {
		t.Fatalf("expected [B], got %v", got)
	}
}

func TestFilterValidate(t *testing.T) {
	filter := Filter{From: mustDate(t, "2024-03-10"), To: mustDate(t, "2024-03-01")}
	if err := filter.Validate(); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if _, err := ParseDate("31-31-2024", bogota); !errors.Is(err, ErrInvalidDateFilter) {
		t.Fatalf("expected ErrInvalidDateFilter, got %v", err)
	}
}
