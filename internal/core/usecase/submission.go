package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/core/ports"
)

type SubmissionState string

const (
	StateIdle       SubmissionState = "idle"
	StateValidating SubmissionState = "validating"
	StateSubmitting SubmissionState = "submitting"
	StateSucceeded  SubmissionState = "succeeded"
	StateFailed     SubmissionState = "failed"
)

// MsgAnalyzeFailed is shown when the gateway rejects a submission without a detail.
const MsgAnalyzeFailed = "error analyzing the email"

type SubmissionSnapshot struct {
	State  SubmissionState
	Form   domain.FormState
	Result *domain.AnalysisResult
	// Preview is the text preview of the last successful submission, used when
	// sending a correction.
	Preview string
}

// SubmissionController owns the analyze form of one browser session or CLI run.
// Only one analyze request is in flight at a time; the loading flag is the guard.
type SubmissionController struct {
	gateway   ports.AnalysisGateway
	previewer ports.TextPreviewer

	mu      sync.Mutex
	state   SubmissionState
	form    domain.FormState
	result  *domain.AnalysisResult
	preview string
}

// NewSubmissionController builds an idle controller. previewer may be nil.
func NewSubmissionController(gateway ports.AnalysisGateway, previewer ports.TextPreviewer) *SubmissionController {
	return &SubmissionController{
		gateway:   gateway,
		previewer: previewer,
		state:     StateIdle,
		form:      domain.NewFormState(),
	}
}

func (c *SubmissionController) SelectMode(mode domain.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editableLocked() {
		return
	}
	c.form.Mode = mode
	c.form.Error = ""
}

func (c *SubmissionController) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editableLocked() {
		return
	}
	c.form.Text = text
	c.form.Error = ""
}

func (c *SubmissionController) SetFile(file *domain.Upload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.editableLocked() {
		return
	}
	c.form.File = file
	c.form.Error = ""
}

// editableLocked is false while a request is pending or a result is shown.
func (c *SubmissionController) editableLocked() bool {
	return !c.form.Loading && c.state != StateSucceeded
}

// Submit validates the active input and, when valid, sends exactly one analyze
// request. While a request is pending it returns ErrSubmissionInFlight, and
// while a result is shown ErrResultShown, both without touching the gateway.
func (c *SubmissionController) Submit(ctx context.Context) (*domain.AnalysisResult, error) {
	c.mu.Lock()
	if c.form.Loading {
		c.mu.Unlock()
		return nil, domain.ErrSubmissionInFlight
	}
	if c.state == StateSucceeded {
		c.mu.Unlock()
		return nil, domain.ErrResultShown
	}

	c.state = StateValidating
	c.form.Error = ""
	var err error
	if c.form.Mode == domain.ModeFile {
		err = domain.ValidateFile(c.form.File)
	} else {
		err = domain.ValidateText(c.form.Text)
	}
	if err != nil {
		c.state = StateFailed
		c.form.Error = err.Error()
		c.mu.Unlock()
		return nil, err
	}

	req := c.form.Request()
	c.state = StateSubmitting
	c.form.Loading = true
	c.mu.Unlock()

	result, message, err := c.send(ctx, req)

	var preview string
	if err == nil {
		preview = c.previewFor(ctx, req, result)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Loading = false
	if err != nil {
		c.state = StateFailed
		c.form.Error = message
		return nil, err
	}

	c.state = StateSucceeded
	c.result = result
	c.preview = preview
	c.form.Error = ""
	c.form.File = nil
	c.form.Text = ""
	return result, nil
}

func (c *SubmissionController) send(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, string, error) {
	relay, err := c.gateway.Analyze(ctx, req)
	if err != nil {
		return nil, domain.MsgAnalyzeConnection, domain.WrapError(domain.ErrTransport, "analyze", err)
	}
	if !relay.OK() {
		message := relay.Detail()
		if message == "" {
			message = MsgAnalyzeFailed
		}
		return nil, message, domain.WrapError(domain.ErrBackend, "analyze", errors.New(message))
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(relay.Body, &result); err != nil {
		return nil, domain.MsgAnalyzeConnection, domain.WrapError(domain.ErrTransport, "decode analyze response", err)
	}
	if !result.Category.Valid() {
		return nil, MsgAnalyzeFailed, domain.WrapError(domain.ErrBackend, "analyze", errors.New("unknown category "+string(result.Category)))
	}
	return &result, "", nil
}

func (c *SubmissionController) previewFor(ctx context.Context, req domain.AnalysisRequest, result *domain.AnalysisResult) string {
	if result.ExtractedText != nil && *result.ExtractedText != "" {
		return domain.PreviewOf(*result.ExtractedText)
	}
	if !req.HasFile() {
		return domain.PreviewOf(req.Text)
	}
	if c.previewer == nil {
		return ""
	}
	text, err := c.previewer.Preview(ctx, *req.File)
	if err != nil {
		slog.Warn("preview_extract_failed", "filename", req.File.Filename, "error", err)
		return ""
	}
	return domain.PreviewOf(text)
}

// Reset starts a new analysis. It is ignored while a request is pending.
func (c *SubmissionController) Reset() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form.Loading {
		return false
	}
	c.state = StateIdle
	c.form = domain.NewFormState()
	c.result = nil
	c.preview = ""
	return true
}

func (c *SubmissionController) Snapshot() SubmissionSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SubmissionSnapshot{
		State:   c.state,
		Form:    c.form,
		Result:  c.result,
		Preview: c.preview,
	}
}
