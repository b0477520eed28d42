package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/core/ports"
)

type Tone string

const (
	ToneGreen  Tone = "green"
	ToneYellow Tone = "yellow"
)

// ResultView is the render-ready form of an AnalysisResult.
type ResultView struct {
	Category          domain.Category `json:"category" yaml:"category"`
	Tone              Tone            `json:"tone" yaml:"tone"`
	HasConfidence     bool            `json:"has_confidence" yaml:"has_confidence"`
	ConfidencePercent int             `json:"confidence_percent" yaml:"confidence_percent"`
	Reply             string          `json:"reply,omitempty" yaml:"reply,omitempty"`
	NeedsReview       bool            `json:"needs_review" yaml:"needs_review"`
}

func NewResultView(result domain.AnalysisResult) ResultView {
	view := ResultView{
		Category:    result.Category,
		Tone:        ToneYellow,
		NeedsReview: result.NeedsReview,
	}
	if result.Category == domain.CategoryProdutivo {
		view.Tone = ToneGreen
	}
	if result.Confidence != nil {
		percent := math.Round(*result.Confidence * 100)
		view.HasConfidence = true
		view.ConfidencePercent = int(math.Max(0, math.Min(100, percent)))
	}
	if result.Reply != nil {
		view.Reply = *result.Reply
	}
	return view
}

// ConfidenceLabel renders the rounded confidence, or "" when it is hidden.
func (v ResultView) ConfidenceLabel() string {
	if !v.HasConfidence {
		return ""
	}
	return fmt.Sprintf("%d%%", v.ConfidencePercent)
}

func (v ResultView) HasReply() bool { return v.Reply != "" }

const (
	CopyConfirmationWindow = 2 * time.Second

	CopyLabel   = "Copy reply"
	CopiedLabel = "Copied!"
)

var ErrNothingToCopy = errors.New("no reply to copy")

// CopyControl copies the suggested reply and shows a confirmation that reverts
// after CopyConfirmationWindow.
type CopyControl struct {
	reply     string
	clipboard ports.Clipboard
	now       func() time.Time

	mu       sync.Mutex
	copiedAt time.Time
}

// NewCopyControl uses time.Now when now is nil.
func NewCopyControl(reply string, clipboard ports.Clipboard, now func() time.Time) *CopyControl {
	if now == nil {
		now = time.Now
	}
	return &CopyControl{reply: reply, clipboard: clipboard, now: now}
}

func (c *CopyControl) Copied() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copiedLocked()
}

func (c *CopyControl) copiedLocked() bool {
	return !c.copiedAt.IsZero() && c.now().Before(c.copiedAt.Add(CopyConfirmationWindow))
}

// Enabled is false without a reply and while the confirmation is shown.
func (c *CopyControl) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reply != "" && !c.copiedLocked()
}

func (c *CopyControl) Label() string {
	if c.Copied() {
		return CopiedLabel
	}
	return CopyLabel
}

func (c *CopyControl) Copy() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reply == "" {
		return ErrNothingToCopy
	}
	if c.copiedLocked() {
		return nil
	}
	if err := c.clipboard.WriteText(c.reply); err != nil {
		return fmt.Errorf("copy reply: %w", err)
	}
	c.copiedAt = c.now()
	return nil
}

type FeedbackStatus string

const (
	FeedbackCollapsed  FeedbackStatus = "collapsed"
	FeedbackOpen       FeedbackStatus = "open"
	FeedbackSubmitting FeedbackStatus = "submitting"
	FeedbackThanked    FeedbackStatus = "thanked"
)

type FeedbackSnapshot struct {
	Status    FeedbackStatus
	Original  domain.Category
	Selected  domain.Category
	Error     string
	CanSubmit bool
}

// FeedbackPanel is the correction flow attached to one displayed result.
// A successful submit is final for the panel's lifetime.
type FeedbackPanel struct {
	gateway  ports.AnalysisGateway
	original domain.Category
	preview  string

	mu       sync.Mutex
	status   FeedbackStatus
	selected domain.Category
	err      string
}

func NewFeedbackPanel(gateway ports.AnalysisGateway, original domain.Category, preview string) *FeedbackPanel {
	return &FeedbackPanel{
		gateway:  gateway,
		original: original,
		preview:  preview,
		status:   FeedbackCollapsed,
	}
}

func (p *FeedbackPanel) Open() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status == FeedbackCollapsed {
		p.status = FeedbackOpen
	}
}

func (p *FeedbackPanel) Select(category domain.Category) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != FeedbackOpen {
		return
	}
	p.selected = category
	p.err = ""
}

func (p *FeedbackPanel) CanSubmit() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canSubmitLocked()
}

func (p *FeedbackPanel) canSubmitLocked() bool {
	return p.status == FeedbackOpen && p.selected.Valid() && p.selected != p.original
}

// Submit sends the correction. It refuses to send when CanSubmit is false.
func (p *FeedbackPanel) Submit(ctx context.Context) error {
	p.mu.Lock()
	switch p.status {
	case FeedbackThanked:
		p.mu.Unlock()
		return nil
	case FeedbackSubmitting:
		p.mu.Unlock()
		return domain.ErrSubmissionInFlight
	}
	if !p.canSubmitLocked() {
		p.mu.Unlock()
		return domain.ErrSameCategory
	}
	req := domain.FeedbackRequest{
		OriginalCategory:  p.original,
		CorrectedCategory: p.selected,
		TextPreview:       p.preview,
	}
	p.status = FeedbackSubmitting
	p.err = ""
	p.mu.Unlock()

	message, err := p.send(ctx, req)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.status = FeedbackOpen
		p.err = message
		return err
	}
	p.status = FeedbackThanked
	return nil
}

func (p *FeedbackPanel) send(ctx context.Context, req domain.FeedbackRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return err.Error(), err
	}
	relay, err := p.gateway.Feedback(ctx, req.Fields())
	if err != nil {
		return domain.MsgFeedbackConnection, domain.WrapError(domain.ErrTransport, "feedback", err)
	}
	if !relay.OK() {
		message := relay.Detail()
		if message == "" {
			message = domain.MsgFeedbackBackendFailed
		}
		return message, domain.WrapError(domain.ErrBackend, "feedback", errors.New(message))
	}
	return "", nil
}

func (p *FeedbackPanel) Snapshot() FeedbackSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return FeedbackSnapshot{
		Status:    p.status,
		Original:  p.original,
		Selected:  p.selected,
		Error:     p.err,
		CanSubmit: p.canSubmitLocked(),
	}
}
