package apihttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"aquasmart-portal/internal/export"
)

const maxBodyBytes = 1 << 20

// envelope wraps read responses. Dialog is set for empty results.
type envelope struct {
	Data   any     `json:"data"`
	Dialog *Dialog `json:"dialog,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON encodes body before writing the status, so an encoding failure
// still reaches the client as an error dialog.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		h.logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("request_id", requestID(r)).
			Msg("encode response")
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(dialogResponse{Dialog: Dialog{Kind: KindError, Title: "Error", Message: messageUnexpected}})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeDocument(w http.ResponseWriter, doc export.Document) {
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	dec := json.NewDecoder(body)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errMalformedBody)
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}
