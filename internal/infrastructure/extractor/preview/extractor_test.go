package preview

import (
	"context"
	"testing"

	"github.com/kirillkom/mail-check/internal/core/domain"
)

func TestPreviewText(t *testing.T) {
	tests := []struct {
		name   string
		upload domain.Upload
		want   string
	}{
		{
			name:   "utf-8",
			upload: domain.Upload{Filename: "a.txt", MimeType: "text/plain", Data: []byte("  Olá, preciso de ajuda\n")},
			want:   "Olá, preciso de ajuda",
		},
		{
			name:   "utf-8 with bom",
			upload: domain.Upload{Filename: "a.txt", MimeType: "text/plain; charset=utf-8", Data: []byte("\xef\xbb\xbfBom dia")},
			want:   "Bom dia",
		},
		{
			name:   "latin-1 fallback",
			upload: domain.Upload{Filename: "a.txt", MimeType: "text/plain", Data: []byte("Ol\xe1, a\xe7\xe3o")},
			want:   "Olá, ação",
		},
		{
			name:   "type from extension",
			upload: domain.Upload{Filename: "MAIL.TXT", Data: []byte("texto")},
			want:   "texto",
		},
	}

	extractor := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractor.Preview(context.Background(), tt.upload)
			if err != nil {
				t.Fatalf("Preview() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPreviewRejectsUnknownFormat(t *testing.T) {
	_, err := NewExtractor().Preview(context.Background(), domain.Upload{Filename: "a.docx", MimeType: "application/msword"})
	if err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestPreviewMalformedPDFIsAnError(t *testing.T) {
	_, err := NewExtractor().Preview(context.Background(), domain.Upload{
		Filename: "broken.pdf",
		MimeType: "application/pdf",
		Data:     []byte("%PDF-1.4 not really a pdf"),
	})
	if err == nil {
		t.Fatalf("expected error for malformed pdf")
	}
}

func TestPreviewHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewExtractor().Preview(ctx, domain.Upload{Filename: "a.txt", Data: []byte("x")}); err == nil {
		t.Fatalf("expected context error")
	}
}
