package httpadapter

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/infrastructure/formdata"
)

// apiAnalyze accepts multipart "file" or "text" and relays the backend answer.
func (rt *Router) apiAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)

	payload, err := formdata.Read(r, "file")
	if err != nil && !formdata.IsNotMultipart(err) {
		rt.writeParseError(w, r, err)
		return
	}

	req := domain.AnalysisRequest{Text: payload.Fields.Get("text")}
	if file := payload.File; file != nil && (file.Filename != "" || file.Size > 0) {
		req.File = &file.Upload
	}

	relay, err := rt.gateway.Analyze(r.Context(), req)
	if err != nil {
		slog.Error("gateway_analyze_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeDetail(w, http.StatusInternalServerError, domain.MsgAnalyzeConnection)
		return
	}
	writeRelay(w, relay)
}

// apiFeedback forwards every received field unchanged. urlencoded bodies are
// accepted as well as multipart.
func (rt *Router) apiFeedback(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)

	payload, err := formdata.Read(r, "")
	if formdata.IsNotMultipart(err) {
		payload.Fields, err = readURLEncoded(r)
	}
	if err != nil {
		rt.writeParseError(w, r, err)
		return
	}

	relay, err := rt.gateway.Feedback(r.Context(), payload.Fields)
	if err != nil {
		slog.Error("gateway_feedback_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeDetail(w, http.StatusInternalServerError, domain.MsgFeedbackConnection)
		return
	}
	writeRelay(w, relay)
}

func readURLEncoded(r *http.Request) (domain.FormFields, error) {
	if err := r.ParseForm(); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse form", err)
	}
	names := make([]string, 0, len(r.PostForm))
	for name := range r.PostForm {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields domain.FormFields
	for _, name := range names {
		for _, value := range r.PostForm[name] {
			fields = append(fields, domain.FormField{Name: name, Value: value})
		}
	}
	return fields, nil
}

func (rt *Router) writeParseError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	detail := "invalid form body"
	if status == http.StatusRequestEntityTooLarge {
		detail = domain.ErrFileTooLarge.Error()
	} else if status == http.StatusInternalServerError {
		status = http.StatusBadRequest
	}
	slog.Warn("gateway_body_rejected", "request_id", requestIDFromContext(r.Context()), "status", status, "error", err)
	writeDetail(w, status, detail)
}

func writeRelay(w http.ResponseWriter, relay *domain.Relay) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(relay.StatusCode)
	_, _ = w.Write(relay.Body)
}
