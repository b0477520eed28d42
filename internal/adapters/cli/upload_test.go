package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/mail-check/internal/core/domain"
)

func TestMimeTypeFor(t *testing.T) {
	tests := map[string]string{
		"mail.txt":     "text/plain",
		"MAIL.PDF":     "application/pdf",
		"notes":        "application/octet-stream",
		"archive.zzz9": "application/octet-stream",
	}
	for name, want := range tests {
		if got := MimeTypeFor(name); got != want {
			t.Fatalf("MimeTypeFor(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestLoadUploadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedido.txt")
	if err := os.WriteFile(path, []byte("Preciso do status do pedido"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	upload, err := LoadUpload(path)
	if err != nil {
		t.Fatalf("LoadUpload() error = %v", err)
	}
	if upload.Filename != "pedido.txt" || upload.MimeType != "text/plain" || upload.Size != 27 {
		t.Fatalf("unexpected upload %+v", upload)
	}
	if err := domain.ValidateFile(upload); err != nil {
		t.Fatalf("expected upload to validate, got %v", err)
	}
}

func TestLoadUploadSkipsOversizedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	if err := file.Truncate(domain.MaxFileSize + 1); err != nil {
		t.Fatalf("truncate fixture: %v", err)
	}
	_ = file.Close()

	upload, err := LoadUpload(path)
	if err != nil {
		t.Fatalf("LoadUpload() error = %v", err)
	}
	if upload.Data != nil {
		t.Fatalf("oversized file must not be read")
	}
	if err := domain.ValidateFile(upload); !errors.Is(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestLoadUploadMissingFile(t *testing.T) {
	if _, err := LoadUpload(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
