package backend

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Decimal accepts a JSON number, a numeric string or null.
// Unparseable and non-finite values decode as zero with Valid unset.
type Decimal struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	*d = Decimal{}
	text, ok := scalarText(data)
	if !ok {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil
	}
	*d = Decimal{Value: parsed, Valid: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Decimal) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(d.Value, 'f', -1, 64)), nil
}

// Text accepts a JSON string, number or null and keeps its textual form.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	text, _ := scalarText(data)
	*t = Text(text)
	return nil
}

func scalarText(data []byte) (string, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", false
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", false
		}
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", false
	}
	return n.String(), true
}
