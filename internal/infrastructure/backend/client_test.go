package backend

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/infrastructure/resilience"
)

type observation struct {
	operation string
	outcome   string
}

type observerFake struct {
	mu   sync.Mutex
	seen []observation
}

func (o *observerFake) ObserveBackendRequest(operation, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{operation: operation, outcome: outcome})
}

func (o *observerFake) last() observation {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.seen) == 0 {
		return observation{}
	}
	return o.seen[len(o.seen)-1]
}

func TestPostSendsMultipartFile(t *testing.T) {
	var (
		gotPath     string
		gotFilename string
		gotType     string
		gotData     string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotFilename = header.Filename
		gotType = header.Header.Get("Content-Type")
		gotData = string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"category":"Produtivo","confidence":0.9}`))
	}))
	defer server.Close()

	observer := &observerFake{}
	client := New(server.URL+"/", Options{Observer: observer})
	relay, err := client.Post(context.Background(), "/api/analyze/file", domain.Multipart{
		File: &domain.FileField{
			FieldName: "file",
			Upload:    domain.Upload{Filename: "mail.txt", MimeType: "text/plain", Data: []byte("Preciso de ajuda")},
		},
	})
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	if relay.StatusCode != http.StatusOK || string(relay.Body) != `{"category":"Produtivo","confidence":0.9}` {
		t.Fatalf("unexpected relay %d %s", relay.StatusCode, relay.Body)
	}
	if gotPath != "/api/analyze/file" || gotFilename != "mail.txt" || gotType != "text/plain" || gotData != "Preciso de ajuda" {
		t.Fatalf("unexpected upstream request path=%q filename=%q type=%q data=%q", gotPath, gotFilename, gotType, gotData)
	}
	if got := observer.last(); got != (observation{operation: "analyze/file", outcome: OutcomeOK}) {
		t.Fatalf("unexpected observation %+v", got)
	}
}

func TestPostRelaysClientAndServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		outcome string
	}{
		{name: "bad request", status: http.StatusBadRequest, body: `{"detail":"Texto muito curto"}`, outcome: OutcomeRejected},
		{name: "server error", status: http.StatusInternalServerError, body: `{"detail":"Erro interno"}`, outcome: OutcomeServerError},
		{name: "unavailable", status: http.StatusServiceUnavailable, body: `{}`, outcome: OutcomeServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			observer := &observerFake{}
			client := New(server.URL, Options{
				Executor: resilience.NewExecutor(resilience.DefaultConfig()),
				Observer: observer,
			})
			relay, err := client.Post(context.Background(), "/api/analyze/text", domain.Multipart{
				Fields: domain.FormFields{{Name: "text", Value: "Preciso de ajuda"}},
			})
			if err != nil {
				t.Fatalf("Post() error = %v", err)
			}
			if relay.StatusCode != tt.status || string(relay.Body) != tt.body {
				t.Fatalf("unexpected relay %d %s", relay.StatusCode, relay.Body)
			}
			if got := observer.last().outcome; got != tt.outcome {
				t.Fatalf("expected outcome %s, got %s", tt.outcome, got)
			}
		})
	}
}

func TestPostTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := server.URL
	server.Close()

	observer := &observerFake{}
	client := New(baseURL, Options{Observer: observer})
	_, err := client.Post(context.Background(), "/api/feedback", domain.Multipart{})
	if !domain.IsKind(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if got := observer.last(); got != (observation{operation: "feedback", outcome: OutcomeTransportError}) {
		t.Fatalf("unexpected observation %+v", got)
	}
}

func TestPostOpensCircuitOnRepeatedServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"upstream"}`))
	}))
	defer server.Close()

	observer := &observerFake{}
	client := New(server.URL, Options{
		Executor: resilience.NewExecutor(resilience.Config{
			BreakerEnabled:          true,
			BreakerMinRequests:      2,
			BreakerFailureRatio:     0.5,
			BreakerOpenTimeout:      time.Minute,
			BreakerHalfOpenMaxCalls: 1,
		}),
		Observer: observer,
	})

	for i := 0; i < 2; i++ {
		relay, err := client.Post(context.Background(), "/api/feedback", domain.Multipart{})
		if err != nil || relay.StatusCode != http.StatusBadGateway {
			t.Fatalf("iteration %d: expected relayed 502, got %v %v", i, relay, err)
		}
	}

	_, err := client.Post(context.Background(), "/api/feedback", domain.Multipart{})
	if !domain.IsKind(err, domain.ErrTransport) {
		t.Fatalf("expected transport error from open circuit, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("open circuit must not reach the backend, got %d calls", calls)
	}
	if got := observer.last().outcome; got != OutcomeCircuitOpen {
		t.Fatalf("expected circuit_open outcome, got %s", got)
	}
}

func TestOperationName(t *testing.T) {
	tests := map[string]string{
		"/api/analyze/file": "analyze/file",
		"/api/feedback":     "feedback",
		"/":                 "unknown",
	}
	for path, want := range tests {
		if got := operationName(path); got != want {
			t.Fatalf("operationName(%q) = %q, want %q", path, got, want)
		}
	}
}
