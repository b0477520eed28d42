package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/kirillkom/mail-check/internal/core/domain"
)

const (
	mimeText = "text/plain"
	mimePDF  = "application/pdf"
)

// Extractor pulls plain text out of an uploaded .txt or .pdf so a correction
// can carry a preview of the email.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Preview(ctx context.Context, upload domain.Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch kindOf(upload) {
	case mimeText:
		return decodeText(upload.Data)
	case mimePDF:
		return extractPDF(upload.Data)
	default:
		return "", fmt.Errorf("unsupported preview format: %s", upload.Filename)
	}
}

func kindOf(upload domain.Upload) string {
	if mediaType, _, err := mime.ParseMediaType(upload.MimeType); err == nil {
		switch mediaType {
		case mimeText, mimePDF:
			return mediaType
		}
	}
	switch strings.ToLower(filepath.Ext(upload.Filename)) {
	case ".txt":
		return mimeText
	case ".pdf":
		return mimePDF
	default:
		return ""
	}
}

// decodeText reads UTF-8 and falls back to Windows-1252, a superset of the
// printable Latin-1 range.
func decodeText(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return strings.TrimSpace(string(raw)), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode latin-1 text: %w", err)
	}
	return strings.TrimSpace(string(decoded)), nil
}

func extractPDF(raw []byte) (text string, err error) {
	// The pdf reader panics on some malformed documents.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	content, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(string(content)), nil
}
