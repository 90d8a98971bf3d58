package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"aquasmart-portal/internal/logging"
	"aquasmart-portal/internal/observability/metrics"
)

const (
	defaultTimeout = 15 * time.Second
	dateLayout     = "2006-01-02"
	maxErrorBody   = 64 << 10
)

// Client is the AquaSmart backend REST client. It holds no credential;
// authenticated calls go through a Session obtained with As.
type Client struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient constructs a backend client.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Session is a client bound to one request's bearer credential.
type Session struct {
	client *Client
	token  string
}

// As binds the client to a credential.
func (c *Client) As(token string) *Session {
	return &Session{client: c, token: strings.TrimSpace(token)}
}

// Login starts a login; the backend answers with an OTP notice.
func (c *Client) Login(ctx context.Context, req LoginRequest) (Message, error) {
	var msg Message
	status, err := c.do(ctx, "login", http.MethodPost, "/users/login", "", req, &msg)
	msg.Status = status
	return msg, err
}

// PreRegister submits a pre-registration form.
func (c *Client) PreRegister(ctx context.Context, req PreRegistration) (Message, error) {
	var msg Message
	status, err := c.do(ctx, "pre_register", http.MethodPost, "/users/pre-register", "", req, &msg)
	msg.Status = status
	return msg, err
}

// Profile returns the authenticated user's profile.
func (s *Session) Profile(ctx context.Context) (User, error) {
	var user User
	err := s.call(ctx, "profile", http.MethodGet, "/users/profile", nil, &user)
	return user, err
}

// Users lists user records (district administrators only).
func (s *Session) Users(ctx context.Context) ([]User, error) {
	var users []User
	err := s.list(ctx, "users", "/users/admin/list-users", &users)
	return users, err
}

// UpdateUser applies a partial update to a user record.
func (s *Session) UpdateUser(ctx context.Context, id string, update UserUpdate) (User, error) {
	if strings.TrimSpace(id) == "" {
		return User{}, errors.New("backend: empty user id")
	}
	var user User
	err := s.call(ctx, "update_user", http.MethodPatch, "/users/admin/update/"+url.PathEscape(id), update, &user)
	return user, err
}

// FlowReadings returns raw flow readings for a subject between two calendar dates.
func (s *Session) FlowReadings(ctx context.Context, scope Scope, id string, start, end time.Time) ([]Measurement, error) {
	if _, err := ParseScope(string(scope)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("backend: empty subject id")
	}
	query := url.Values{}
	query.Set("start_date", start.Format(dateLayout))
	query.Set("end_date", end.Format(dateLayout))
	path := fmt.Sprintf("/iot/flow-measurements/%s/%s?%s", scope, url.PathEscape(id), query.Encode())

	var readings []Measurement
	err := s.list(ctx, "flow_readings", path, &readings)
	return readings, err
}

// Property returns property metadata.
func (s *Session) Property(ctx context.Context, id string) (Property, error) {
	var property Property
	err := s.call(ctx, "property", http.MethodGet, "/plot-lot/properties/"+url.PathEscape(id), nil, &property)
	return property, err
}

// Lot returns lot metadata.
func (s *Session) Lot(ctx context.Context, id string) (Lot, error) {
	var lot Lot
	err := s.call(ctx, "lot", http.MethodGet, "/plot-lot/lots/"+url.PathEscape(id), nil, &lot)
	return lot, err
}

// Invoices lists the invoices visible to the credential.
func (s *Session) Invoices(ctx context.Context) ([]Invoice, error) {
	var invoices []Invoice
	err := s.list(ctx, "invoices", "/billing/invoices", &invoices)
	return invoices, err
}

// CreateFlowChangeRequest files a flow-change request.
func (s *Session) CreateFlowChangeRequest(ctx context.Context, req FlowChangeRequest) (Receipt, error) {
	var receipt Receipt
	err := s.call(ctx, "flow_request", http.MethodPost, "/plot-lot/flow-requests", req, &receipt)
	return receipt, err
}

// ReportError files an application error report.
func (s *Session) ReportError(ctx context.Context, report ErrorReport) (Receipt, error) {
	var receipt Receipt
	err := s.call(ctx, "error_report", http.MethodPost, "/communication/reports", report, &receipt)
	return receipt, err
}

func (s *Session) call(ctx context.Context, op, method, path string, body, out any) error {
	if s == nil || s.client == nil {
		return errors.New("backend: nil session")
	}
	if s.token == "" {
		return ErrMissingCredential
	}
	_, err := s.client.do(ctx, op, method, path, s.token, body, out)
	return err
}

// list decodes either a bare JSON array or a paginated envelope.
func (s *Session) list(ctx context.Context, op, path string, out any) error {
	var raw json.RawMessage
	if err := s.call(ctx, op, http.MethodGet, path, nil, &raw); err != nil {
		return err
	}
	return decodeList(raw, out)
}

func decodeList(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}
	var envelope struct {
		Results json.RawMessage `json:"results"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return fmt.Errorf("backend: decode list: %w", err)
	}
	switch {
	case len(envelope.Results) > 0:
		return json.Unmarshal(envelope.Results, out)
	case len(envelope.Data) > 0:
		return json.Unmarshal(envelope.Data, out)
	default:
		return nil
	}
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body any, out any) (int, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveBackendRequest(op, result, time.Since(start))
	}()

	var reqBody io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			result = metrics.ResultError
			return 0, err
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		result = metrics.ResultError
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		result = metrics.ResultError
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		c.logger.Warn().Err(err).Str("op", op).Msg("backend unreachable")
		return 0, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	switch {
	case token != "" && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden):
		result = metrics.ResultError
		return resp.StatusCode, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		result = metrics.ResultError
		return resp.StatusCode, ErrNotFound
	case resp.StatusCode >= 300:
		result = metrics.ResultError
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &APIError{Status: resp.StatusCode, Message: messageFromBody(data)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return resp.StatusCode, nil
		}
		result = metrics.ResultError
		return resp.StatusCode, fmt.Errorf("backend: decode %s: %w", op, err)
	}
	return resp.StatusCode, nil
}
