package backend

import (
	"errors"
	"strings"
)

// Scope selects which subject flow readings are queried for.
type Scope string

const (
	ScopeLot      Scope = "lot"
	ScopeProperty Scope = "property"
	ScopeDistrict Scope = "district"
)

// ErrInvalidScope is returned for unknown scopes.
var ErrInvalidScope = errors.New("backend: invalid scope")

// ParseScope normalizes a scope name.
func ParseScope(value string) (Scope, error) {
	scope := Scope(strings.ToLower(strings.TrimSpace(value)))
	switch scope {
	case ScopeLot, ScopeProperty, ScopeDistrict:
		return scope, nil
	default:
		return "", ErrInvalidScope
	}
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Document string `json:"document"`
	Password string `json:"password"`
}

// PreRegistration is the self-service registration form.
type PreRegistration struct {
	Document     string `json:"document"`
	DocumentType string `json:"document_type,omitempty"`
	PersonType   string `json:"person_type,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Password     string `json:"password"`
	Address      string `json:"address,omitempty"`
}

// Message is a plain backend acknowledgement.
type Message struct {
	Status int    `json:"-"`
	Text   string `json:"message"`
}

// User is a user record.
type User struct {
	ID        Text   `json:"id"`
	Document  Text   `json:"document"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     Text   `json:"phone"`
	IsActive  bool   `json:"is_active"`
	Role      string `json:"role,omitempty"`
}

// UserUpdate is a partial user record update.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// Measurement is a raw flow reading.
type Measurement struct {
	Timestamp string  `json:"timestamp"`
	FlowRate  Decimal `json:"flow_rate"`
}

// Property is a predio.
type Property struct {
	ID            Text   `json:"id"`
	Name          string `json:"name"`
	OwnerDocument Text   `json:"owner"`
	OwnerName     string `json:"owner_name"`
	Address       string `json:"address"`
	Extension     Text   `json:"extension"`
}

// Lot is a subdivision of a property with its own meter.
type Lot struct {
	ID         Text   `json:"id_lot"`
	Name       string `json:"name"`
	PropertyID Text   `json:"plot"`
	CropType   string `json:"crop_type"`
	IsActive   bool   `json:"is_activate"`
}

// Invoice is a billing record as stored by the backend.
type Invoice struct {
	Code           Text   `json:"code"`
	LotCode        Text   `json:"lot_code"`
	Lot            Text   `json:"lot"`
	PropertyID     Text   `json:"property_id"`
	ClientDocument Text   `json:"client_document"`
	ClientName     string `json:"client_name"`
	Status         string `json:"status"`
	TotalAmount    Text   `json:"total_amount"`
	CreationDate   string `json:"creation_date"`
	DuePaymentDate string `json:"due_payment_date"`
}

// FlowChangeRequest asks the district to change the flow assigned to a lot.
type FlowChangeRequest struct {
	ClientRequestID string  `json:"client_request_id"`
	LotID           string  `json:"lot"`
	RequestedFlow   float64 `json:"requested_flow"`
	Observations    string  `json:"observations"`
}

// ErrorReport is a user submitted application failure report.
type ErrorReport struct {
	ClientReportID string `json:"client_report_id"`
	Category       string `json:"failure_type"`
	Description    string `json:"observations"`
	Page           string `json:"page,omitempty"`
}

// Receipt acknowledges a created request or report.
type Receipt struct {
	ID      Text   `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
