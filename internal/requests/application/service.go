package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"aquasmart-portal/internal/audit"
	"aquasmart-portal/internal/backend"
	"aquasmart-portal/internal/observability/metrics"
	requests "aquasmart-portal/internal/requests/domain"
)

const (
	kindFlowChange  = "flow_change"
	kindErrorReport = "error_report"
	kindUserUpdate  = "user_update"
)

// FlowRequestGateway forwards flow-change requests.
type FlowRequestGateway interface {
	CreateFlowChangeRequest(ctx context.Context, req backend.FlowChangeRequest) (backend.Receipt, error)
}

// ErrorReportGateway forwards error reports.
type ErrorReportGateway interface {
	ReportError(ctx context.Context, report backend.ErrorReport) (backend.Receipt, error)
}

// UserGateway lists and updates user records.
type UserGateway interface {
	Users(ctx context.Context) ([]backend.User, error)
	UpdateUser(ctx context.Context, id string, update backend.UserUpdate) (backend.User, error)
}

// Service validates and forwards user submitted requests.
type Service struct {
	audit  audit.Logger
	logger zerolog.Logger
	newID  func() string
}

// NewService constructs the requests service.
func NewService(auditLogger audit.Logger, logger zerolog.Logger) (*Service, error) {
	if auditLogger == nil {
		return nil, errors.New("requests service: nil audit logger")
	}
	return &Service{audit: auditLogger, logger: logger, newID: uuid.NewString}, nil
}

// SubmitFlowChange validates and forwards a flow-change request.
// Invalid requests never reach the backend.
func (s *Service) SubmitFlowChange(ctx context.Context, gw FlowRequestGateway, req requests.FlowChange) (backend.Receipt, error) {
	normalized, err := req.Normalize()
	if err != nil {
		metrics.IncRequestSubmitted(kindFlowChange, metrics.ResultRejected)
		return backend.Receipt{}, err
	}
	payload := backend.FlowChangeRequest{
		ClientRequestID: s.newID(),
		LotID:           normalized.LotID,
		RequestedFlow:   normalized.RequestedFlow,
		Observations:    normalized.Justification,
	}
	receipt, err := gw.CreateFlowChangeRequest(ctx, payload)
	entry := audit.NewEntry(ctx, audit.ActionFlowChangeRequest, "lot", normalized.LotID).WithMetadata(map[string]any{
		"client_request_id": payload.ClientRequestID,
		"requested_flow":    payload.RequestedFlow,
	})
	s.finish(ctx, kindFlowChange, entry, err)
	if err != nil {
		return backend.Receipt{}, fmt.Errorf("create flow change request: %w", err)
	}
	return receipt, nil
}

// ReportError validates and forwards an error report.
func (s *Service) ReportError(ctx context.Context, gw ErrorReportGateway, report requests.ErrorReport) (backend.Receipt, error) {
	normalized, err := report.Normalize()
	if err != nil {
		metrics.IncRequestSubmitted(kindErrorReport, metrics.ResultRejected)
		return backend.Receipt{}, err
	}
	payload := backend.ErrorReport{
		ClientReportID: s.newID(),
		Category:       normalized.Category,
		Description:    normalized.Description,
		Page:           normalized.Page,
	}
	receipt, err := gw.ReportError(ctx, payload)
	entry := audit.NewEntry(ctx, audit.ActionErrorReport, "error_report", payload.ClientReportID).WithMetadata(map[string]any{
		"category": payload.Category,
		"page":     payload.Page,
	})
	s.finish(ctx, kindErrorReport, entry, err)
	if err != nil {
		return backend.Receipt{}, fmt.Errorf("report error: %w", err)
	}
	return receipt, nil
}

// Users lists user records.
func (s *Service) Users(ctx context.Context, gw UserGateway) ([]backend.User, error) {
	users, err := gw.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUser validates and forwards a user record update.
func (s *Service) UpdateUser(ctx context.Context, gw UserGateway, id string, update requests.UserUpdate) (backend.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		metrics.IncRequestSubmitted(kindUserUpdate, metrics.ResultRejected)
		return backend.User{}, requests.ErrMissingUserID
	}
	normalized, err := update.Normalize()
	if err != nil {
		metrics.IncRequestSubmitted(kindUserUpdate, metrics.ResultRejected)
		return backend.User{}, err
	}
	user, err := gw.UpdateUser(ctx, id, backend.UserUpdate{
		Email:    normalized.Email,
		Phone:    normalized.Phone,
		IsActive: normalized.IsActive,
	})
	fields := make([]string, 0, 3)
	if normalized.Email != nil {
		fields = append(fields, "email")
	}
	if normalized.Phone != nil {
		fields = append(fields, "phone")
	}
	if normalized.IsActive != nil {
		fields = append(fields, "is_active")
	}
	entry := audit.NewEntry(ctx, audit.ActionUserUpdate, "user", id).WithMetadata(map[string]any{"fields": fields})
	s.finish(ctx, kindUserUpdate, entry, err)
	if err != nil {
		return backend.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *Service) finish(ctx context.Context, kind string, entry audit.Entry, err error) {
	result := metrics.ResultSuccess
	entry.Outcome = audit.OutcomeSuccess
	if err != nil {
		result = metrics.ResultError
		entry.Outcome = audit.OutcomeFailed
	}
	metrics.IncRequestSubmitted(kind, result)
	if logErr := s.audit.Log(ctx, entry); logErr != nil {
		s.logger.Error().Err(logErr).Str("action", entry.Action).Msg("audit log failed")
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", kind).Str("resource_id", entry.ResourceID).Msg("request forwarding failed")
	}
}
