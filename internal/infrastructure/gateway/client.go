// Package gateway talks to a running mail-check gateway over HTTP. It lets
// the CLI drive the same controller the web UI uses.
package gateway

import (
	"context"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/core/ports"
)

const (
	AnalyzePath  = "/api/analyze"
	FeedbackPath = "/api/feedback"
)

type Client struct {
	poster ports.Backend
}

// New wraps a multipart poster pointed at the gateway base URL, usually a
// *backend.Client.
func New(poster ports.Backend) *Client {
	return &Client{poster: poster}
}

func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.Relay, error) {
	var payload domain.Multipart
	if req.HasText() {
		payload.Fields = domain.FormFields{{Name: "text", Value: req.Text}}
	}
	if req.HasFile() {
		payload.File = &domain.FileField{FieldName: "file", Upload: *req.File}
	}
	return c.poster.Post(ctx, AnalyzePath, payload)
}

func (c *Client) Feedback(ctx context.Context, fields domain.FormFields) (*domain.Relay, error) {
	return c.poster.Post(ctx, FeedbackPath, domain.Multipart{Fields: fields})
}
