package httpadapter

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/core/usecase"
	"github.com/kirillkom/mail-check/internal/infrastructure/formdata"
)

//go:embed templates/*.html
var templatesFS embed.FS

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"isMode": func(form domain.FormState, mode string) bool {
			return string(form.Mode) == mode
		},
		"textLength": domain.TextLength,
	}
	tmpl, err := template.New("layout").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

type pageData struct {
	CSRFField template.HTML

	Form      domain.FormState
	FileName  string
	CanSubmit bool
	Flash     string

	MinTextLength int
	MaxTextLength int
	AcceptTypes   string

	Result     *usecase.ResultView
	Feedback   *usecase.FeedbackSnapshot
	Categories []domain.Category

	CopyLabel   string
	CopiedLabel string
	CopyWindow  int64
}

func (rt *Router) index(w http.ResponseWriter, r *http.Request) {
	session, ok := rt.uiSession(w, r)
	if !ok {
		return
	}

	snap := session.Controller.Snapshot()
	data := pageData{
		CSRFField:     csrf.TemplateField(r),
		Form:          snap.Form,
		CanSubmit:     snap.Form.CanSubmit(),
		Flash:         session.TakeFlash(),
		MinTextLength: domain.MinTextLength,
		MaxTextLength: domain.MaxTextLength,
		AcceptTypes:   ".txt,.pdf",
		Categories:    domain.Categories,
		CopyLabel:     usecase.CopyLabel,
		CopiedLabel:   usecase.CopiedLabel,
		CopyWindow:    usecase.CopyConfirmationWindow.Milliseconds(),
	}
	if snap.Form.File != nil {
		data.FileName = snap.Form.File.Filename
	}
	if snap.Result != nil {
		view := usecase.NewResultView(*snap.Result)
		data.Result = &view
		if panel := session.Feedback(); panel != nil {
			feedback := panel.Snapshot()
			data.Feedback = &feedback
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := rt.templates.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("template_render_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}

func (rt *Router) selectMode(w http.ResponseWriter, r *http.Request) {
	session, ok := rt.uiSession(w, r)
	if !ok {
		return
	}
	if mode, valid := domain.ParseMode(r.PostFormValue("mode")); valid {
		session.Controller.SelectMode(mode)
	}
	redirectHome(w, r)
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	session, ok := rt.uiSession(w, r)
	if !ok {
		return
	}
	controller := session.Controller

	payload, err := formdata.Read(r, "file")
	switch {
	case formdata.IsTooLarge(err):
		session.SetFlash(domain.ErrFileTooLarge.Error())
		redirectHome(w, r)
		return
	case formdata.IsNotMultipart(err):
		payload.Fields, err = readURLEncoded(r)
	}
	if err != nil {
		session.SetFlash("the form could not be read, try again")
		redirectHome(w, r)
		return
	}

	if mode, valid := domain.ParseMode(payload.Fields.Get("mode")); valid {
		controller.SelectMode(mode)
	}
	if controller.Snapshot().Form.Mode == domain.ModeText {
		controller.SetText(payload.Fields.Get("text"))
	} else if payload.File != nil && payload.File.Filename != "" {
		controller.SetFile(&payload.File.Upload)
	}

	result, err := controller.Submit(r.Context())
	switch {
	case errors.Is(err, domain.ErrSubmissionInFlight), errors.Is(err, domain.ErrResultShown):
		// A double submit or a stale tab; the pending or shown result wins.
	case err != nil:
		rt.recordSubmission("analyze", submissionOutcome(err))
	default:
		rt.recordSubmission("analyze", "ok")
		snap := controller.Snapshot()
		session.SetFeedback(usecase.NewFeedbackPanel(rt.gateway, result.Category, snap.Preview))
	}
	redirectHome(w, r)
}

func (rt *Router) reset(w http.ResponseWriter, r *http.Request) {
	session, ok := rt.uiSession(w, r)
	if !ok {
		return
	}
	if session.Controller.Reset() {
		session.SetFeedback(nil)
	}
	redirectHome(w, r)
}

func (rt *Router) openFeedback(w http.ResponseWriter, r *http.Request) {
	session, ok := rt.uiSession(w, r)
	if !ok {
		return
	}
	if panel := session.Feedback(); panel != nil {
		panel.Open()
	}
	redirectHome(w, r)
}

func (rt *Router) submitFeedback(w http.ResponseWriter, r *http.Request) {
	session, ok := rt.uiSession(w, r)
	if !ok {
		return
	}
	panel := session.Feedback()
	if panel == nil {
		redirectHome(w, r)
		return
	}

	if category, valid := domain.ParseCategory(r.PostFormValue("corrected_category")); valid {
		panel.Select(category)
	}
	err := panel.Submit(r.Context())
	switch {
	case errors.Is(err, domain.ErrSubmissionInFlight):
	case errors.Is(err, domain.ErrSameCategory):
		session.SetFlash(err.Error())
	case err != nil:
		rt.recordSubmission("feedback", submissionOutcome(err))
	default:
		rt.recordSubmission("feedback", "ok")
	}
	redirectHome(w, r)
}

// limitUIBody caps UI form bodies before the CSRF check parses them. A body
// announced as too large is turned away with a message instead of a 403.
func (rt *Router) limitUIBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > rt.opts.MaxUploadBytes {
			session, ok := rt.uiSession(w, r)
			if !ok {
				return
			}
			session.SetFlash(domain.ErrFileTooLarge.Error())
			redirectHome(w, r)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, rt.opts.MaxUploadBytes)
		next.ServeHTTP(w, r)
	})
}

func (rt *Router) uiSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	session, err := rt.sessionFor(w, r)
	if err != nil {
		slog.Error("session_create_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		http.Error(w, "session error", http.StatusInternalServerError)
		return nil, false
	}
	return session, true
}

func (rt *Router) recordSubmission(kind, outcome string) {
	if rt.opts.Metrics != nil {
		rt.opts.Metrics.RecordSubmission(kind, outcome)
	}
}

func submissionOutcome(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid"
	case domain.IsKind(err, domain.ErrTransport):
		return "transport_error"
	case domain.IsKind(err, domain.ErrBackend):
		return "backend_error"
	default:
		return "error"
	}
}

// redirectHome finishes every UI POST (Post/Redirect/Get).
func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
