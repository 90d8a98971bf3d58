package apihttp

import (
	"net/http"
	"strings"

	"aquasmart-portal/internal/audit"
	"aquasmart-portal/internal/backend"
)

// login handles POST /api/v1/auth/login. The backend answers with an OTP
// notice; its status and message are passed through.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req backend.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, opLogin, err)
		return
	}
	req.Document = strings.TrimSpace(req.Document)
	if req.Document == "" || req.Password == "" {
		h.fail(w, r, opLogin, errMissingField)
		return
	}

	msg, err := h.backend.Login(r.Context(), req)
	entry := audit.NewEntry(r.Context(), audit.ActionLogin, "user", req.Document)
	entry.Actor = req.Document
	if err != nil {
		entry.Outcome = audit.OutcomeRejected
		h.record(r, entry)
		h.fail(w, r, opLogin, err)
		return
	}
	h.record(r, entry)
	h.writeJSON(w, r, passThroughStatus(msg.Status), messageResponse{Message: msg.Text})
}

// preRegister handles POST /api/v1/auth/pre-register.
func (h *Handler) preRegister(w http.ResponseWriter, r *http.Request) {
	var req backend.PreRegistration
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, opPreRegister, err)
		return
	}
	req.Document = strings.TrimSpace(req.Document)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Document == "" || req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
		h.fail(w, r, opPreRegister, errMissingField)
		return
	}

	msg, err := h.backend.PreRegister(r.Context(), req)
	entry := audit.NewEntry(r.Context(), audit.ActionPreRegister, "user", req.Document)
	entry.Actor = req.Document
	if err != nil {
		entry.Outcome = audit.OutcomeRejected
		h.record(r, entry)
		h.fail(w, r, opPreRegister, err)
		return
	}
	h.record(r, entry)
	h.writeJSON(w, r, passThroughStatus(msg.Status), messageResponse{Message: msg.Text})
}

// profile handles GET /api/v1/profile.
func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.session(r).Profile(r.Context())
	if err != nil {
		h.fail(w, r, opProfile, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, envelope{Data: user})
}

func passThroughStatus(status int) int {
	if status < 200 || status >= 300 {
		return http.StatusOK
	}
	return status
}
