package requests

import (
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTextLength bounds justifications and report descriptions.
	MaxTextLength = 1000
	// MaxFlow is the largest flow, in l/s, a single lot may request.
	MaxFlow = 1e6
)

// FlowChange asks for a change of the flow assigned to a lot.
type FlowChange struct {
	LotID         string  `json:"lot_id"`
	RequestedFlow float64 `json:"requested_flow"`
	Justification string  `json:"justification"`
}

// Normalize validates the request and returns its sanitized form.
func (r FlowChange) Normalize() (FlowChange, error) {
	out := FlowChange{
		LotID:         strings.TrimSpace(r.LotID),
		RequestedFlow: r.RequestedFlow,
		Justification: SanitizeText(r.Justification),
	}
	if out.LotID == "" {
		return FlowChange{}, ErrMissingLot
	}
	if math.IsNaN(out.RequestedFlow) || math.IsInf(out.RequestedFlow, 0) || out.RequestedFlow <= 0 || out.RequestedFlow > MaxFlow {
		return FlowChange{}, ErrInvalidFlow
	}
	if out.Justification == "" {
		return FlowChange{}, ErrMissingJustification
	}
	if utf8.RuneCountInString(out.Justification) > MaxTextLength {
		return FlowChange{}, fmt.Errorf("%w: justification", ErrTextTooLong)
	}
	return out, nil
}

// ParseFlow reads a requested flow typed by a user. Both '.' and ',' are
// accepted as decimal separator.
func ParseFlow(value string) (float64, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", ".")
	if value == "" {
		return 0, ErrInvalidFlow
	}
	flow, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, ErrInvalidFlow
	}
	return flow, nil
}

// Categories are the failure types offered by the error report form.
var Categories = []string{
	"Error de aplicación",
	"Error de conexión",
	"Error en datos",
	"Error de exportación",
	"Otro",
}

// CanonicalCategory matches value against Categories ignoring case.
func CanonicalCategory(value string) (string, bool) {
	for _, category := range Categories {
		if strings.EqualFold(category, value) {
			return category, true
		}
	}
	return "", false
}

// ErrorReport is a user reported application failure.
type ErrorReport struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Page        string `json:"page,omitempty"`
}

// Normalize validates the report and returns its sanitized form.
func (r ErrorReport) Normalize() (ErrorReport, error) {
	out := ErrorReport{
		Category:    SanitizeText(r.Category),
		Description: SanitizeText(r.Description),
		Page:        SanitizeText(r.Page),
	}
	if out.Category == "" {
		return ErrorReport{}, ErrMissingCategory
	}
	category, ok := CanonicalCategory(out.Category)
	if !ok {
		return ErrorReport{}, ErrUnknownCategory
	}
	out.Category = category
	if out.Description == "" {
		return ErrorReport{}, ErrMissingDescription
	}
	if utf8.RuneCountInString(out.Description) > MaxTextLength {
		return ErrorReport{}, fmt.Errorf("%w: description", ErrTextTooLong)
	}
	return out, nil
}

// UserUpdate changes contact details or the active flag of a user record.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Normalize validates the update and returns its trimmed form.
func (u UserUpdate) Normalize() (UserUpdate, error) {
	if u.Email == nil && u.Phone == nil && u.IsActive == nil {
		return UserUpdate{}, ErrEmptyUpdate
	}
	out := UserUpdate{IsActive: u.IsActive}
	if u.Email != nil {
		email := strings.TrimSpace(*u.Email)
		if !ValidEmail(email) {
			return UserUpdate{}, ErrInvalidEmail
		}
		out.Email = &email
	}
	if u.Phone != nil {
		phone := strings.Join(strings.Fields(*u.Phone), "")
		if !ValidPhone(phone) {
			return UserUpdate{}, ErrInvalidPhone
		}
		out.Phone = &phone
	}
	return out, nil
}

// ValidEmail reports whether value is a bare e-mail address.
func ValidEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return false
	}
	at := strings.LastIndex(value, "@")
	return at > 0 && strings.Contains(value[at+1:], ".")
}

// ValidPhone accepts 7 to 15 digits with an optional leading '+'.
func ValidPhone(value string) bool {
	digits := strings.TrimPrefix(value, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
