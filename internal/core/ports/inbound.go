package ports

import (
	"context"

	"github.com/kirillkom/mail-check/internal/core/domain"
)

// AnalysisGateway is the contract of the proxy gateway as seen by its callers:
// the browser session flow in-process and the CLI over HTTP. A returned error
// means the gateway itself could not be reached.
type AnalysisGateway interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.Relay, error)
	Feedback(ctx context.Context, fields domain.FormFields) (*domain.Relay, error)
}
