package billing

import (
	"math"
	"strconv"
	"strings"
)

// Status is an invoice lifecycle status.
type Status string

const (
	StatusPending   Status = "pendiente"
	StatusPaid      Status = "pagada"
	StatusOverdue   Status = "vencida"
	StatusValidated Status = "validada"
)

// KnownStatuses is the fixed order used by summaries and exports.
var KnownStatuses = []Status{StatusPending, StatusPaid, StatusOverdue, StatusValidated}

// NormalizeStatus maps a raw status onto a known one.
func NormalizeStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range KnownStatuses {
		if status == known {
			return known, true
		}
	}
	return "", false
}

// Label returns the status as shown in reports.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pendiente"
	case StatusPaid:
		return "Pagada"
	case StatusOverdue:
		return "Vencida"
	case StatusValidated:
		return "Validada"
	default:
		return string(s)
	}
}

// Invoice is a billing record. It is read-only to the portal.
type Invoice struct {
	Code           string `json:"code"`
	LotCode        string `json:"lot_code"`
	Lot            string `json:"lot,omitempty"`
	PropertyID     string `json:"property_id,omitempty"`
	ClientDocument string `json:"client_document"`
	ClientName     string `json:"client_name"`
	Status         string `json:"status"`
	TotalAmount    string `json:"total_amount"`
	CreationDate   string `json:"creation_date"`
	DuePaymentDate string `json:"due_payment_date"`
}

// Amount parses TotalAmount. Unparseable amounts count as zero.
func (i Invoice) Amount() float64 {
	return ParseAmount(i.TotalAmount)
}

// ParseAmount reads the leading decimal number of value, like parseFloat.
// It never fails: input without a numeric prefix yields 0.
func ParseAmount(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(value, 64); err == nil {
		return finiteOrZero(parsed)
	}
	end := numericPrefix(value)
	if end == 0 {
		return 0
	}
	parsed, err := strconv.ParseFloat(value[:end], 64)
	if err != nil {
		return 0
	}
	return finiteOrZero(parsed)
}

// finiteOrZero maps NaN and infinities, which strconv accepts, to zero.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func numericPrefix(value string) int {
	i := 0
	if i < len(value) && (value[i] == '-' || value[i] == '+') {
		i++
	}
	digits := 0
	for i < len(value) && value[i] >= '0' && value[i] <= '9' {
		i++
		digits++
	}
	if i < len(value) && value[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(value) && value[j] >= '0' && value[j] <= '9' {
			j++
			frac++
		}
		if frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	return i
}
