package apihttp

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"aquasmart-portal/internal/audit"
	"aquasmart-portal/internal/auth"
	"aquasmart-portal/internal/backend"
	billingapp "aquasmart-portal/internal/billing/application"
	consumptionapp "aquasmart-portal/internal/consumption/application"
	"aquasmart-portal/internal/export"
	requestsapp "aquasmart-portal/internal/requests/application"
)

// Deps are the collaborators of the HTTP API.
type Deps struct {
	Backend     *backend.Client
	Consumption *consumptionapp.Service
	Invoices    *billingapp.Service
	Requests    *requestsapp.Service
	Exporter    *export.Exporter
	Audit       audit.Logger
	Logger      zerolog.Logger
	// JWTSecret enables HS256 verification of bearer tokens when set.
	JWTSecret []byte
	LoginPath string
	// RequestTimeout bounds each API request, backend calls included.
	RequestTimeout time.Duration
}

// Handler serves the portal API.
type Handler struct {
	backend     *backend.Client
	consumption *consumptionapp.Service
	invoices    *billingapp.Service
	requests    *requestsapp.Service
	exporter    *export.Exporter
	audit       audit.Logger
	logger      zerolog.Logger
	loginPath   string
	now         func() time.Time
}

// NewHandler validates deps and constructs the handler.
func NewHandler(deps Deps) (*Handler, error) {
	switch {
	case deps.Backend == nil:
		return nil, errors.New("apihttp: nil backend client")
	case deps.Consumption == nil:
		return nil, errors.New("apihttp: nil consumption service")
	case deps.Invoices == nil:
		return nil, errors.New("apihttp: nil invoice service")
	case deps.Requests == nil:
		return nil, errors.New("apihttp: nil requests service")
	case deps.Exporter == nil:
		return nil, errors.New("apihttp: nil exporter")
	case deps.Audit == nil:
		return nil, errors.New("apihttp: nil audit logger")
	}
	loginPath := deps.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Handler{
		backend:     deps.Backend,
		consumption: deps.Consumption,
		invoices:    deps.Invoices,
		requests:    deps.Requests,
		exporter:    deps.Exporter,
		audit:       deps.Audit,
		logger:      deps.Logger,
		loginPath:   loginPath,
		now:         time.Now,
	}, nil
}

// NewRouter builds the chi router with middleware and routes.
func NewRouter(deps Deps) (chi.Router, error) {
	h, err := NewHandler(deps)
	if err != nil {
		return nil, err
	}
	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, []string{"/api/v1/auth/"})
	authMW := auth.NewMiddleware(deps.JWTSecret, policy, h.authError)

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(newLoggingMiddleware(deps.Logger))
	r.Use(middleware.Recoverer)
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}
	r.Use(authMW.Wrap)
	r.Use(auditInfoMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.login)
		r.Post("/auth/pre-register", h.preRegister)
		r.Get("/profile", h.profile)

		r.Get("/consumption/granularities", h.granularities)
		r.Get("/consumption/{scope}/{id}", h.consumptionHistory)
		r.Get("/consumption/{scope}/{id}/export.{format}", h.consumptionExport)

		r.Get("/invoices", h.listInvoices)
		r.Get("/invoices/summary", h.invoiceSummary)
		r.Get("/invoices/export.{format}", h.invoiceExport)

		r.Post("/flow-requests", h.createFlowRequest)
		r.Get("/error-reports/categories", h.errorCategories)
		r.Post("/error-reports", h.createErrorReport)

		r.Get("/users", h.listUsers)
		r.Patch("/users/{id}", h.updateUser)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, r, http.StatusNotFound, dialogResponse{Dialog: Dialog{Kind: KindNotFound, Title: titleNotFound, Message: messageNotFound}})
	})
	return r, nil
}

// session binds the backend client to the request credential.
func (h *Handler) session(r *http.Request) *backend.Session {
	cred, _ := auth.CredentialFromContext(r.Context())
	return h.backend.As(cred.Token)
}

func (h *Handler) record(r *http.Request, entry audit.Entry) {
	if err := h.audit.Log(r.Context(), entry); err != nil {
		h.logger.Error().Err(err).Str("action", entry.Action).Msg("audit log failed")
	}
}
