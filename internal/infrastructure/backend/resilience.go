package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/infrastructure/resilience"
)

// HTTPStatusError carries a 5xx response through the circuit breaker so it
// counts as a failure. Post turns it back into a Relay.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "backend status error"
	}
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		return fmt.Sprintf("backend %s status: %s", e.Operation, e.Status)
	}
	if len(body) > 256 {
		body = body[:256]
	}
	return fmt.Sprintf("backend %s status: %s: %s", e.Operation, e.Status, body)
}

func (e *HTTPStatusError) Relay() *domain.Relay {
	return &domain.Relay{StatusCode: e.StatusCode, Body: e.Body}
}

// classifyBackendError counts everything except the caller giving up against
// the breaker.
func classifyBackendError(err error) resilience.ErrorClassification {
	if err == nil || errors.Is(err, context.Canceled) {
		return resilience.ErrorClassification{}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}
