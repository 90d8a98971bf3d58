package apihttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"aquasmart-portal/internal/audit"
	billingapp "aquasmart-portal/internal/billing/application"
	"aquasmart-portal/internal/export"
)

const messageNoInvoices = "No se encontraron facturas con los filtros seleccionados."

func invoiceQuery(r *http.Request) billingapp.Query {
	q := r.URL.Query()
	return billingapp.Query{
		Code:     q.Get("code"),
		Lot:      q.Get("lot"),
		Document: q.Get("document"),
		Status:   q.Get("status"),
		From:     q.Get("from"),
		To:       q.Get("to"),
	}
}

func (h *Handler) invoiceReport(r *http.Request) (billingapp.Report, error) {
	filter, err := h.invoices.ParseQuery(invoiceQuery(r))
	if err != nil {
		return billingapp.Report{}, err
	}
	return h.invoices.Report(r.Context(), h.session(r), filter)
}

// listInvoices handles GET /api/v1/invoices.
func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	filter, err := h.invoices.ParseQuery(invoiceQuery(r))
	if err != nil {
		h.fail(w, r, opInvoices, err)
		return
	}
	invoices, err := h.invoices.List(r.Context(), h.session(r), filter)
	if err != nil {
		h.fail(w, r, opInvoices, err)
		return
	}
	resp := envelope{Data: invoices}
	if len(invoices) == 0 {
		resp.Data = []struct{}{}
		resp.Dialog = infoDialog(messageNoInvoices)
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// invoiceSummary handles GET /api/v1/invoices/summary.
func (h *Handler) invoiceSummary(w http.ResponseWriter, r *http.Request) {
	report, err := h.invoiceReport(r)
	if err != nil {
		h.fail(w, r, opInvoices, err)
		return
	}
	resp := envelope{Data: report.Summary}
	if report.Empty() {
		resp.Dialog = infoDialog(messageNoInvoices)
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// invoiceExport handles GET /api/v1/invoices/export.{format}.
func (h *Handler) invoiceExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.fail(w, r, opExport, err)
		return
	}
	report, err := h.invoiceReport(r)
	if err != nil {
		h.fail(w, r, opExport, err)
		return
	}
	if report.Empty() {
		h.writeJSON(w, r, http.StatusOK, envelope{Data: report.Summary, Dialog: infoDialog(messageNoInvoices)})
		return
	}
	doc, err := h.exporter.Invoices(format, report)
	if err != nil {
		h.fail(w, r, opExport, err)
		return
	}
	h.record(r, exportEntry(r, "invoices", "", format, doc))
	writeDocument(w, doc)
}

func exportEntry(r *http.Request, report, resourceID string, format export.Format, doc export.Document) audit.Entry {
	return audit.NewEntry(r.Context(), audit.ActionExport, report, resourceID).WithMetadata(map[string]any{
		"format":   string(format),
		"filename": doc.Filename,
		"bytes":    len(doc.Body),
		"query":    r.URL.RawQuery,
	})
}
