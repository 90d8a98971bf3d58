package requests

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestFlowChangeNormalize(t *testing.T) {
	req, err := FlowChange{LotID: " 1234567-001 ", RequestedFlow: 12.5, Justification: "  <b>Ampliación</b> de   cultivo <script>alert(1)</script>"}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if req.LotID != "1234567-001" {
		t.Fatalf("unexpected lot %q", req.LotID)
	}
	if req.Justification != "Ampliación de cultivo" {
		t.Fatalf("unexpected justification %q", req.Justification)
	}
}

func TestFlowChangeValidation(t *testing.T) {
	cases := []struct {
		name string
		req  FlowChange
		want error
	}{
		{"missing lot", FlowChange{RequestedFlow: 1, Justification: "x"}, ErrMissingLot},
		{"zero flow", FlowChange{LotID: "1", RequestedFlow: 0, Justification: "x"}, ErrInvalidFlow},
		{"negative flow", FlowChange{LotID: "1", RequestedFlow: -3, Justification: "x"}, ErrInvalidFlow},
		{"nan flow", FlowChange{LotID: "1", RequestedFlow: math.NaN(), Justification: "x"}, ErrInvalidFlow},
		{"inf flow", FlowChange{LotID: "1", RequestedFlow: math.Inf(1), Justification: "x"}, ErrInvalidFlow},
		{"markup only", FlowChange{LotID: "1", RequestedFlow: 2, Justification: "<p> </p>"}, ErrMissingJustification},
		{"too long", FlowChange{LotID: "1", RequestedFlow: 2, Justification: strings.Repeat("a", MaxTextLength+1)}, ErrTextTooLong},
	}
	for _, tc := range cases {
		if _, err := tc.req.Normalize(); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestParseFlow(t *testing.T) {
	if v, err := ParseFlow(" 3,75 "); err != nil || v != 3.75 {
		t.Fatalf("expected 3.75, got %v %v", v, err)
	}
	for _, input := range []string{"", "abc", "1.2.3"} {
		if _, err := ParseFlow(input); !errors.Is(err, ErrInvalidFlow) {
			t.Fatalf("ParseFlow(%q): expected ErrInvalidFlow, got %v", input, err)
		}
	}
}

func TestErrorReportNormalize(t *testing.T) {
	report, err := ErrorReport{Category: "Error de exportación", Description: "El PDF sale en blanco &amp; sin logo", Page: "/consumo"}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if report.Description != "El PDF sale en blanco & sin logo" {
		t.Fatalf("unexpected description %q", report.Description)
	}
	if _, err := (ErrorReport{Description: "x"}).Normalize(); !errors.Is(err, ErrMissingCategory) {
		t.Fatalf("expected ErrMissingCategory, got %v", err)
	}
	if _, err := (ErrorReport{Category: "Error de impresora", Description: "x"}).Normalize(); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	report, err = ErrorReport{Category: "error de conexión", Description: "x"}.Normalize()
	if err != nil || report.Category != "Error de conexión" {
		t.Fatalf("expected canonical category, got %q (%v)", report.Category, err)
	}
	if _, err := (ErrorReport{Category: "Otro", Description: "<img src=x>"}).Normalize(); !errors.Is(err, ErrMissingDescription) {
		t.Fatalf("expected ErrMissingDescription, got %v", err)
	}
}

func TestUserUpdateNormalize(t *testing.T) {
	email := " ana@example.com "
	phone := "+57 300 123 4567"
	update, err := UserUpdate{Email: &email, Phone: &phone}.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if *update.Email != "ana@example.com" || *update.Phone != "+573001234567" {
		t.Fatalf("unexpected update %q %q", *update.Email, *update.Phone)
	}

	if _, err := (UserUpdate{}).Normalize(); !errors.Is(err, ErrEmptyUpdate) {
		t.Fatalf("expected ErrEmptyUpdate, got %v", err)
	}
	bad := "Ana <ana@example.com>"
	if _, err := (UserUpdate{Email: &bad}).Normalize(); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	noDomain := "ana@localhost"
	if _, err := (UserUpdate{Email: &noDomain}).Normalize(); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	short := "12345"
	if _, err := (UserUpdate{Phone: &short}).Normalize(); !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("expected ErrInvalidPhone, got %v", err)
	}
	active := false
	if update, err := (UserUpdate{IsActive: &active}).Normalize(); err != nil || *update.IsActive {
		t.Fatalf("expected deactivation update, got %+v %v", update, err)
	}
}
