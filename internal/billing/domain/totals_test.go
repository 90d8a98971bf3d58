package billing

import (
	"testing"
)

func TestSummarizeDropsUnknownStatus(t *testing.T) {
	invoices := []Invoice{
		{Code: "F-1", Status: "pagada", LotCode: "1234567-001", ClientDocument: "100", TotalAmount: "1000"},
		{Code: "F-2", Status: "Pagada", LotCode: "1234567-002", ClientDocument: "100", TotalAmount: "500.50"},
		{Code: "F-3", Status: "pendiente", LotCode: "7654321-001", ClientDocument: "200", TotalAmount: "abc"},
		{Code: "F-4", Status: "desconocido", LotCode: "9999999-001", ClientDocument: "300", TotalAmount: "70"},
	}
	summary := Summarize(invoices)

	count := 0
	for _, total := range summary.ByStatus {
		count += total.InvoiceCount
	}
	if count != 3 {
		t.Fatalf("expected 3 invoices across statuses, got %d", count)
	}
	if summary.Unknown != 1 {
		t.Fatalf("expected 1 unknown invoice, got %d", summary.Unknown)
	}
	if len(summary.ByStatus) != 2 || summary.ByStatus[0].Status != StatusPending || summary.ByStatus[1].Status != StatusPaid {
		t.Fatalf("unexpected status order %+v", summary.ByStatus)
	}

	paid, ok := summary.Lookup(StatusPaid)
	if !ok {
		t.Fatalf("expected paid totals")
	}
	if paid.InvoiceCount != 2 || paid.DistinctUsers != 1 || paid.DistinctProperties != 1 || paid.DistinctLots != 2 || paid.AmountSum != 1500.5 {
		t.Fatalf("unexpected paid totals %+v", paid)
	}

	pending, _ := summary.Lookup(StatusPending)
	if pending.AmountSum != 0 {
		t.Fatalf("expected unparseable amount to count as 0, got %v", pending.AmountSum)
	}

	if summary.Grand.InvoiceCount != 3 || summary.Grand.AmountSum != 1500.5 {
		t.Fatalf("unexpected grand totals %+v", summary.Grand)
	}
}

func TestSummarizeGrandTotalCountsEntitiesOnce(t *testing.T) {
	invoices := []Invoice{
		{Status: "pagada", LotCode: "1234567-001", ClientDocument: "100", TotalAmount: "10"},
		{Status: "vencida", LotCode: "1234567-001", ClientDocument: "100", TotalAmount: "20"},
		{Status: "validada", LotCode: "2222222-001", ClientDocument: "200", TotalAmount: "30"},
	}
	summary := Summarize(invoices)

	perStatusUsers := 0
	for _, total := range summary.ByStatus {
		perStatusUsers += total.DistinctUsers
	}
	if perStatusUsers != 3 {
		t.Fatalf("expected 3 per-status users, got %d", perStatusUsers)
	}
	if summary.Grand.DistinctUsers != 2 || summary.Grand.DistinctProperties != 2 || summary.Grand.DistinctLots != 2 {
		t.Fatalf("unexpected grand distinct counts %+v", summary.Grand)
	}
}

func TestPropertyKey(t *testing.T) {
	cases := []struct {
		name string
		inv  Invoice
		want string
	}{
		{"dash prefix", Invoice{LotCode: "1234567-001"}, "1234567"},
		{"long dash prefix truncated", Invoice{LotCode: "123456789-01"}, "1234567"},
		{"short dash prefix", Invoice{LotCode: "AB-01"}, "AB"},
		{"long code without dash", Invoice{LotCode: "ABCDEFGHIJ"}, "ABCDEFG"},
		{"short code", Invoice{LotCode: "AB12"}, "AB12"},
		{"property id", Invoice{PropertyID: "P9"}, "P9"},
		{"client document", Invoice{ClientDocument: "1109"}, "predio_1109"},
		{"row index", Invoice{}, "predio_4"},
	}
	for _, tc := range cases {
		if got := PropertyKey(tc.inv, 4); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestLotAndUserKeys(t *testing.T) {
	if got := LotKey(Invoice{LotCode: "1234567-001", Lot: "7"}, 0); got != "1234567-001" {
		t.Fatalf("expected lot code, got %q", got)
	}
	if got := LotKey(Invoice{Lot: "7"}, 0); got != "7" {
		t.Fatalf("expected lot, got %q", got)
	}
	if got := LotKey(Invoice{}, 3); got != "lote_3" {
		t.Fatalf("expected index fallback, got %q", got)
	}
	if got := UserKey(Invoice{ClientName: "Ana Ruiz"}, 0); got != "ana ruiz" {
		t.Fatalf("expected name fallback, got %q", got)
	}
	if got := UserKey(Invoice{}, 2); got != "usuario_2" {
		t.Fatalf("expected index fallback, got %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"1500.75":  1500.75,
		" 20 ":     20,
		"12abc":    12,
		"3.5 COP":  3.5,
		"abc":      0,
		"":         0,
		"-4.25":    -4.25,
		"1,234.00": 1,
		"12.":      12,
		"1e3":      1000,
		"NaN":      0,
		"Infinity": 0,
		"inf":      0,
		"-Inf":     0,
		"1e999":    0,
	}
	for input, want := range cases {
		if got := ParseAmount(input); got != want {
			t.Fatalf("ParseAmount(%q): expected %v, got %v", input, want, got)
		}
	}
}
