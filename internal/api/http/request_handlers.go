package apihttp

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	requests "aquasmart-portal/internal/requests/domain"
)

// flowField accepts the requested flow as a JSON number or as text typed
// with either decimal separator.
type flowField struct {
	value float64
	err   error
}

func (f *flowField) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		f.value, f.err = 0, requests.ErrInvalidFlow
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		f.value, f.err = requests.ParseFlow(text)
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		f.value, f.err = 0, requests.ErrInvalidFlow
		return nil
	}
	f.value, f.err = value, nil
	return nil
}

type flowRequestBody struct {
	LotID         string    `json:"lot_id"`
	RequestedFlow flowField `json:"requested_flow"`
	Justification string    `json:"justification"`
}

// createFlowRequest handles POST /api/v1/flow-requests.
func (h *Handler) createFlowRequest(w http.ResponseWriter, r *http.Request) {
	body := flowRequestBody{RequestedFlow: flowField{err: requests.ErrInvalidFlow}}
	if err := decodeJSON(w, r, &body); err != nil {
		h.fail(w, r, opFlowRequest, err)
		return
	}
	if strings.TrimSpace(body.LotID) != "" && body.RequestedFlow.err != nil {
		h.fail(w, r, opFlowRequest, body.RequestedFlow.err)
		return
	}
	receipt, err := h.requests.SubmitFlowChange(r.Context(), h.session(r), requests.FlowChange{
		LotID:         body.LotID,
		RequestedFlow: body.RequestedFlow.value,
		Justification: body.Justification,
	})
	if err != nil {
		h.fail(w, r, opFlowRequest, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, envelope{Data: receipt})
}

// createErrorReport handles POST /api/v1/error-reports.
func (h *Handler) createErrorReport(w http.ResponseWriter, r *http.Request) {
	var report requests.ErrorReport
	if err := decodeJSON(w, r, &report); err != nil {
		h.fail(w, r, opErrorReport, err)
		return
	}
	receipt, err := h.requests.ReportError(r.Context(), h.session(r), report)
	if err != nil {
		h.fail(w, r, opErrorReport, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, envelope{Data: receipt})
}

// errorCategories handles GET /api/v1/error-reports/categories.
func (h *Handler) errorCategories(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, envelope{Data: requests.Categories})
}

// listUsers handles GET /api/v1/users.
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.requests.Users(r.Context(), h.session(r))
	if err != nil {
		h.fail(w, r, opUsers, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, envelope{Data: users})
}

// updateUser handles PATCH /api/v1/users/{id}.
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var update requests.UserUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		h.fail(w, r, opUsers, err)
		return
	}
	user, err := h.requests.UpdateUser(r.Context(), h.session(r), chi.URLParam(r, "id"), update)
	if err != nil {
		h.fail(w, r, opUsers, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, envelope{Data: user})
}
