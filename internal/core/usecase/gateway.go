package usecase

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/core/ports"
)

const (
	BackendAnalyzeFilePath = "/api/analyze/file"
	BackendAnalyzeTextPath = "/api/analyze/text"
	BackendFeedbackPath    = "/api/feedback"
)

// ProxyGateway routes analyze and feedback payloads to the classification
// backend and shapes what the caller gets back. It holds no per-request state.
type ProxyGateway struct {
	backend ports.Backend
}

func NewProxyGateway(backend ports.Backend) *ProxyGateway {
	return &ProxyGateway{backend: backend}
}

// Analyze never returns an error: transport failures become a 500 relay.
func (g *ProxyGateway) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.Relay, error) {
	var (
		path    string
		payload domain.Multipart
	)
	switch {
	case req.HasFile():
		path = BackendAnalyzeFilePath
		payload.File = &domain.FileField{FieldName: "file", Upload: *req.File}
	case req.HasText():
		path = BackendAnalyzeTextPath
		payload.Fields = domain.FormFields{{Name: "text", Value: req.Text}}
	default:
		return domain.NewDetailRelay(http.StatusBadRequest, domain.MsgInputMissing), nil
	}

	return g.forward(ctx, "analyze", path, payload, domain.MsgAnalyzeBackendFailed, domain.MsgAnalyzeConnection), nil
}

// Feedback forwards the received fields as they are.
func (g *ProxyGateway) Feedback(ctx context.Context, fields domain.FormFields) (*domain.Relay, error) {
	payload := domain.Multipart{Fields: fields}
	return g.forward(ctx, "feedback", BackendFeedbackPath, payload, domain.MsgFeedbackBackendFailed, domain.MsgFeedbackConnection), nil
}

func (g *ProxyGateway) forward(
	ctx context.Context,
	operation, path string,
	payload domain.Multipart,
	fallback, connectionMsg string,
) *domain.Relay {
	relay, err := g.backend.Post(ctx, path, payload)
	if err != nil {
		slog.Error("backend_request_failed", "operation", operation, "path", path, "error", err)
		return domain.NewDetailRelay(http.StatusInternalServerError, connectionMsg)
	}
	if !relay.ValidJSON() {
		slog.Error("backend_response_not_json", "operation", operation, "path", path, "status", relay.StatusCode)
		return domain.NewDetailRelay(http.StatusInternalServerError, connectionMsg)
	}
	if relay.OK() {
		return relay
	}

	detail := relay.Detail()
	if detail == "" {
		detail = fallback
	}
	slog.Warn("backend_request_rejected", "operation", operation, "path", path, "status", relay.StatusCode, "detail", detail)
	return domain.NewDetailRelay(relay.StatusCode, detail)
}
