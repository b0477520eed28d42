package backend

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/infrastructure/resilience"
)

const (
	OutcomeOK             = "ok"
	OutcomeRejected       = "rejected"
	OutcomeServerError    = "server_error"
	OutcomeTransportError = "transport_error"
	OutcomeCircuitOpen    = "circuit_open"
)

// Observer receives one observation per Post.
type Observer interface {
	ObserveBackendRequest(operation, outcome string, duration time.Duration)
}

type Options struct {
	Timeout  time.Duration
	Executor *resilience.Executor
	Observer Observer
}

// Client posts multipart payloads to the classification backend and returns
// the status and JSON body as they came back.
type Client struct {
	baseURL    string
	httpClient *http.Client
	executor   *resilience.Executor
	observer   Observer
}

func New(baseURL string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		executor:   opts.Executor,
		observer:   opts.Observer,
	}
}

// Post returns an error only when no HTTP response was obtained. Every
// response, 5xx included, comes back as a Relay.
func (c *Client) Post(ctx context.Context, path string, payload domain.Multipart) (*domain.Relay, error) {
	operation := operationName(path)
	start := time.Now()

	var relay *domain.Relay
	call := func(ctx context.Context) error {
		var err error
		relay, err = c.postMultipart(ctx, path, payload, operation)
		return err
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, call, classifyBackendError)
	} else {
		err = call(ctx)
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		relay = statusErr.Relay()
		err = nil
	}
	c.observe(operation, outcomeOf(relay, err), time.Since(start))

	if err != nil {
		return nil, domain.WrapError(domain.ErrTransport, "backend "+operation, err)
	}
	return relay, nil
}

func (c *Client) observe(operation, outcome string, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveBackendRequest(operation, outcome, duration)
	}
}

func outcomeOf(relay *domain.Relay, err error) string {
	switch {
	case resilience.IsCircuitOpen(err):
		return OutcomeCircuitOpen
	case err != nil:
		return OutcomeTransportError
	case relay.StatusCode >= http.StatusInternalServerError:
		return OutcomeServerError
	case relay.OK():
		return OutcomeOK
	default:
		return OutcomeRejected
	}
}

// operationName turns "/api/analyze/file" into "analyze/file".
func operationName(path string) string {
	name := strings.TrimPrefix(strings.Trim(path, "/"), "api/")
	if name == "" {
		return "unknown"
	}
	return name
}
