package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/kirillkom/mail-check/internal/core/domain"
)

func ptr[T any](v T) *T { return &v }

func TestResultViewProductive(t *testing.T) {
	view := NewResultView(domain.AnalysisResult{
		Category:   domain.CategoryProdutivo,
		Confidence: ptr(0.87),
		Reply:      ptr("Olá, vamos verificar."),
	})
	if view.Tone != ToneGreen {
		t.Fatalf("expected green, got %s", view.Tone)
	}
	if view.ConfidenceLabel() != "87%" {
		t.Fatalf("unexpected confidence %q", view.ConfidenceLabel())
	}
	if view.NeedsReview {
		t.Fatalf("review notice must be hidden")
	}
	if !view.HasReply() {
		t.Fatalf("expected reply")
	}
}

func TestResultViewImproductiveNeedsReview(t *testing.T) {
	view := NewResultView(domain.AnalysisResult{
		Category:    domain.CategoryImprodutivo,
		Confidence:  ptr(0.55),
		NeedsReview: true,
	})
	if view.Tone != ToneYellow {
		t.Fatalf("expected yellow, got %s", view.Tone)
	}
	if view.ConfidenceLabel() != "55%" || !view.NeedsReview {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.HasReply() {
		t.Fatalf("expected no reply")
	}
}

func TestResultViewProductiveNeedsReview(t *testing.T) {
	view := NewResultView(domain.AnalysisResult{
		Category:    domain.CategoryProdutivo,
		Confidence:  ptr(0.41),
		Reply:       ptr("Vamos verificar."),
		NeedsReview: true,
	})
	if view.Tone != ToneGreen {
		t.Fatalf("expected green, got %s", view.Tone)
	}
	if !view.NeedsReview || view.ConfidenceLabel() != "41%" || view.Reply != "Vamos verificar." {
		t.Fatalf("unexpected view %+v", view)
	}
}

func TestResultViewConfidence(t *testing.T) {
	tests := []struct {
		name       string
		confidence *float64
		want       string
	}{
		{name: "absent", confidence: nil, want: ""},
		{name: "zero", confidence: ptr(0.0), want: "0%"},
		{name: "rounds half up", confidence: ptr(0.875), want: "88%"},
		{name: "clamped", confidence: ptr(1.2), want: "100%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := NewResultView(domain.AnalysisResult{Category: domain.CategoryProdutivo, Confidence: tt.confidence})
			if got := view.ConfidenceLabel(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

type clipboardFake struct {
	writes []string
	err    error
}

func (c *clipboardFake) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.writes = append(c.writes, text)
	return nil
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestCopyControlConfirmationWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	clipboard := &clipboardFake{}
	control := NewCopyControl("Olá, vamos verificar.", clipboard, clock.Now)

	if !control.Enabled() || control.Label() != CopyLabel {
		t.Fatalf("expected enabled copy control")
	}
	if err := control.Copy(); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if len(clipboard.writes) != 1 || clipboard.writes[0] != "Olá, vamos verificar." {
		t.Fatalf("unexpected clipboard writes %v", clipboard.writes)
	}
	if control.Label() != CopiedLabel || control.Enabled() {
		t.Fatalf("expected confirmation state")
	}

	clock.now = clock.now.Add(1500 * time.Millisecond)
	if err := control.Copy(); err != nil {
		t.Fatalf("Copy() during confirmation error = %v", err)
	}
	if len(clipboard.writes) != 1 {
		t.Fatalf("copy during confirmation must not write again")
	}

	clock.now = clock.now.Add(600 * time.Millisecond)
	if control.Label() != CopyLabel || !control.Enabled() {
		t.Fatalf("expected label to revert after the window")
	}
}

func TestCopyControlWithoutReply(t *testing.T) {
	control := NewCopyControl("", &clipboardFake{}, nil)
	if control.Enabled() {
		t.Fatalf("expected disabled control")
	}
	if err := control.Copy(); !errors.Is(err, ErrNothingToCopy) {
		t.Fatalf("expected ErrNothingToCopy, got %v", err)
	}
}

func TestCopyControlClipboardFailureKeepsLabel(t *testing.T) {
	control := NewCopyControl("reply", &clipboardFake{err: errors.New("no display")}, nil)
	if err := control.Copy(); err == nil {
		t.Fatalf("expected error")
	}
	if control.Label() != CopyLabel {
		t.Fatalf("label must not change after a failed copy")
	}
}

func TestFeedbackPanelSameCategoryDisabled(t *testing.T) {
	gateway := &gatewayFake{feedbackRelay: okRelay(`{"success":true}`)}
	panel := NewFeedbackPanel(gateway, domain.CategoryProdutivo, "preview")

	panel.Select(domain.CategoryImprodutivo)
	if panel.CanSubmit() {
		t.Fatalf("selection before opening must be ignored")
	}

	panel.Open()
	panel.Select(domain.CategoryProdutivo)
	if panel.CanSubmit() {
		t.Fatalf("same category must disable submit")
	}
	if err := panel.Submit(context.Background()); !errors.Is(err, domain.ErrSameCategory) {
		t.Fatalf("expected ErrSameCategory, got %v", err)
	}
	if len(gateway.feedbackCalls) != 0 {
		t.Fatalf("expected no feedback call")
	}
}

func TestFeedbackPanelSubmitThanksPermanently(t *testing.T) {
	gateway := &gatewayFake{feedbackRelay: okRelay(`{"success":true,"message":"ok"}`)}
	panel := NewFeedbackPanel(gateway, domain.CategoryProdutivo, "Feliz natal")
	panel.Open()
	panel.Select(domain.CategoryImprodutivo)

	if err := panel.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(gateway.feedbackCalls) != 1 {
		t.Fatalf("expected 1 feedback call, got %d", len(gateway.feedbackCalls))
	}
	fields := gateway.feedbackCalls[0]
	if fields.Get("original_category") != "Produtivo" ||
		fields.Get("corrected_category") != "Improdutivo" ||
		fields.Get("text_preview") != "Feliz natal" {
		t.Fatalf("unexpected fields %+v", fields)
	}

	panel.Open()
	panel.Select(domain.CategoryProdutivo)
	if err := panel.Submit(context.Background()); err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
	if snap := panel.Snapshot(); snap.Status != FeedbackThanked {
		t.Fatalf("expected thanked, got %s", snap.Status)
	}
	if len(gateway.feedbackCalls) != 1 {
		t.Fatalf("thank-you state must not resend")
	}
}

func TestFeedbackPanelFailureAllowsRetry(t *testing.T) {
	gateway := &gatewayFake{feedbackRelay: domain.NewDetailRelay(http.StatusBadRequest, "Categoria inválida")}
	panel := NewFeedbackPanel(gateway, domain.CategoryImprodutivo, "")
	panel.Open()
	panel.Select(domain.CategoryProdutivo)

	err := panel.Submit(context.Background())
	if !domain.IsKind(err, domain.ErrBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	snap := panel.Snapshot()
	if snap.Status != FeedbackOpen || snap.Error != "Categoria inválida" || !snap.CanSubmit {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	gateway.feedbackRelay = okRelay(`{"success":true}`)
	if err := panel.Submit(context.Background()); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if panel.Snapshot().Status != FeedbackThanked {
		t.Fatalf("expected thanked after retry")
	}
}

func TestFeedbackPanelTransportFailureMessage(t *testing.T) {
	gateway := &gatewayFake{feedbackErr: errors.New("connection reset")}
	panel := NewFeedbackPanel(gateway, domain.CategoryImprodutivo, "")
	panel.Open()
	panel.Select(domain.CategoryProdutivo)

	if err := panel.Submit(context.Background()); !domain.IsKind(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if got := panel.Snapshot().Error; got != domain.MsgFeedbackConnection {
		t.Fatalf("unexpected message %q", got)
	}
}
