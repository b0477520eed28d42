// Package formdata converts between multipart/form-data bodies and the
// domain.Multipart payload the gateway forwards.
package formdata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	"github.com/kirillkom/mail-check/internal/core/domain"
)

const defaultFileType = "application/octet-stream"

// maxMemory is how much of a parsed body stays in memory before spilling to
// temporary files. Bodies are capped by the caller.
const maxMemory = 8 << 20

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode writes value fields in order, then the file part if any.
func Encode(payload domain.Multipart) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range payload.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", field.Name, err)
		}
	}

	if payload.File != nil {
		contentType := payload.File.MimeType
		if strings.TrimSpace(contentType) == "" {
			contentType = defaultFileType
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(payload.File.FieldName), quoteEscaper.Replace(payload.File.Filename)))
		header.Set("Content-Type", contentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := part.Write(payload.File.Data); err != nil {
			return nil, "", fmt.Errorf("write file part: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// Read parses a multipart request body. Value fields come back sorted by name.
// When fileField is set, the first file under that name becomes payload.File.
// A body that is not multipart yields http.ErrNotMultipart; an oversized body
// yields the *http.MaxBytesError from the caller's reader.
func Read(r *http.Request, fileField string) (domain.Multipart, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return domain.Multipart{}, err
	}
	form := r.MultipartForm
	defer func() { _ = form.RemoveAll() }()

	var payload domain.Multipart
	names := make([]string, 0, len(form.Value))
	for name := range form.Value {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range form.Value[name] {
			payload.Fields = append(payload.Fields, domain.FormField{Name: name, Value: value})
		}
	}

	if fileField == "" {
		return payload, nil
	}
	headers := form.File[fileField]
	if len(headers) == 0 {
		return payload, nil
	}
	upload, err := readUpload(headers[0])
	if err != nil {
		return domain.Multipart{}, err
	}
	payload.File = &domain.FileField{FieldName: fileField, Upload: *upload}
	return payload, nil
}

func readUpload(header *multipart.FileHeader) (*domain.Upload, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	return &domain.Upload{
		Filename: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Size:     header.Size,
		Data:     data,
	}, nil
}

// IsNotMultipart reports whether err means the body was not multipart/form-data.
func IsNotMultipart(err error) bool {
	return errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary)
}

// IsTooLarge reports whether err came from a body size cap.
func IsTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge)
}
