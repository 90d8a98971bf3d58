package apihttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	consumptionapp "aquasmart-portal/internal/consumption/application"
	"aquasmart-portal/internal/export"
)

func consumptionQuery(r *http.Request) consumptionapp.Query {
	q := r.URL.Query()
	return consumptionapp.Query{
		Scope:       chi.URLParam(r, "scope"),
		SubjectID:   chi.URLParam(r, "id"),
		Start:       q.Get("start"),
		End:         q.Get("end"),
		Granularity: q.Get("granularity"),
	}
}

// granularities handles GET /api/v1/consumption/granularities.
func (h *Handler) granularities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	options, err := h.consumption.Options(q.Get("start"), q.Get("end"))
	if err != nil {
		h.fail(w, r, opConsumption, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, envelope{Data: options})
}

// consumptionHistory handles GET /api/v1/consumption/{scope}/{id}.
func (h *Handler) consumptionHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.consumption.History(r.Context(), h.session(r), consumptionQuery(r))
	if err != nil {
		h.fail(w, r, opConsumption, err)
		return
	}
	resp := envelope{Data: history}
	if history.Notice != "" {
		resp.Dialog = infoDialog(history.Notice)
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// consumptionExport handles GET /api/v1/consumption/{scope}/{id}/export.{format}.
func (h *Handler) consumptionExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.fail(w, r, opExport, err)
		return
	}
	query := consumptionQuery(r)

	var (
		subject consumptionapp.Subject
		history consumptionapp.History
	)
	if format == export.FormatCSV {
		history, err = h.consumption.History(r.Context(), h.session(r), query)
	} else {
		subject, history, err = h.consumption.Report(r.Context(), h.session(r), query)
	}
	if err != nil {
		h.fail(w, r, opExport, err)
		return
	}
	if history.Empty() {
		h.writeJSON(w, r, http.StatusOK, envelope{Data: history, Dialog: infoDialog(history.Notice)})
		return
	}

	doc, err := h.exporter.Consumption(format, subject, history)
	if err != nil {
		h.fail(w, r, opExport, err)
		return
	}
	h.record(r, exportEntry(r, "consumption", string(history.Scope)+":"+history.SubjectID, format, doc))
	writeDocument(w, doc)
}
