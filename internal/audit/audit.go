package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Actions recorded by the portal.
const (
	ActionLogin             = "auth.login"
	ActionPreRegister       = "auth.pre_register"
	ActionFlowChangeRequest = "flow_request.create"
	ActionErrorReport       = "error_report.create"
	ActionUserUpdate        = "user.update"
	ActionExport            = "report.export"
)

// Outcomes of an audited action.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Entry represents an audit log entry.
type Entry struct {
	ID            string
	Actor         string
	Role          string
	Action        string
	ResourceType  string
	ResourceID    string
	Outcome       string
	Metadata      json.RawMessage
	PayloadDigest string
	RequestID     string
	IP            string
	UserAgent     string
	CreatedAt     time.Time
}

// Logger writes audit entries.
type Logger interface {
	Log(ctx context.Context, entry Entry) error
}

// RequestInfo is the caller identity attached to a request context.
type RequestInfo struct {
	Actor     string
	Role      string
	RequestID string
	IP        string
	UserAgent string
}

type contextKey struct{}

// WithRequestInfo stores caller details for entries created downstream.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

// RequestInfoFromContext returns the caller details, if any.
func RequestInfoFromContext(ctx context.Context) RequestInfo {
	if ctx == nil {
		return RequestInfo{}
	}
	info, _ := ctx.Value(contextKey{}).(RequestInfo)
	return info
}

// NewEntry starts an entry for action with the caller details of ctx.
func NewEntry(ctx context.Context, action, resourceType, resourceID string) Entry {
	info := RequestInfoFromContext(ctx)
	return Entry{
		Actor:        info.Actor,
		Role:         info.Role,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    info.RequestID,
		IP:           info.IP,
		UserAgent:    info.UserAgent,
	}
}

// WithMetadata marshals metadata into the entry. Marshal failures leave it empty.
func (e Entry) WithMetadata(metadata any) Entry {
	if metadata == nil {
		return e
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return e
	}
	e.Metadata = data
	return e
}

// NewID generates a random audit id.
func NewID() string {
	return "audit-" + uuid.NewString()
}

// DigestJSON computes a SHA256 hex digest for metadata payloads.
func DigestJSON(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func prepare(entry Entry, now time.Time) Entry {
	if entry.ID == "" {
		entry.ID = NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now.UTC()
	}
	if entry.Outcome == "" {
		entry.Outcome = OutcomeSuccess
	}
	if entry.PayloadDigest == "" {
		entry.PayloadDigest = DigestJSON(entry.Metadata)
	}
	return entry
}
