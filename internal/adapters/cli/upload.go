package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/mail-check/internal/core/domain"
)

// MimeTypeFor maps a file name to the type the gateway validates against.
func MimeTypeFor(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	case "":
		return "application/octet-stream"
	default:
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
		return "application/octet-stream"
	}
}

// LoadUpload reads path into an Upload. Files over the size limit are not
// read; the returned Upload carries only their size so validation rejects them.
func LoadUpload(path string) (*domain.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	upload := &domain.Upload{
		Filename: filepath.Base(path),
		MimeType: MimeTypeFor(path),
		Size:     info.Size(),
	}
	if info.Size() > domain.MaxFileSize {
		return upload, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	upload.Data = data
	upload.Size = int64(len(data))
	return upload, nil
}
