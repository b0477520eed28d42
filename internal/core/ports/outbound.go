package ports

import (
	"context"

	"github.com/kirillkom/mail-check/internal/core/domain"
)

// Backend posts multipart payloads to the classification service. Non-2xx
// answers are returned as a Relay; only transport failures are errors.
type Backend interface {
	Post(ctx context.Context, path string, payload domain.Multipart) (*domain.Relay, error)
}

// TextPreviewer extracts readable text from an uploaded file.
type TextPreviewer interface {
	Preview(ctx context.Context, upload domain.Upload) (string, error)
}

// Clipboard receives the suggested reply on "copy reply".
type Clipboard interface {
	WriteText(text string) error
}
