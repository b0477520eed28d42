package domain

import (
	"mime"
	"strings"
	"unicode/utf16"
)

const (
	MinTextLength = 10
	MaxTextLength = 50000
	MaxFileSize   = 5 * 1024 * 1024
)

var AllowedMimeTypes = []string{"text/plain", "application/pdf"}

// ValidationError is a client-side rejection with a message fit for the form.
// Every ValidationError matches ErrInvalidInput.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

var (
	ErrTextTooShort    = &ValidationError{msg: "text must have at least 10 characters"}
	ErrTextTooLong     = &ValidationError{msg: "text cannot exceed 50,000 characters"}
	ErrFileMissing     = &ValidationError{msg: "select a file"}
	ErrUnsupportedType = &ValidationError{msg: "invalid format, use .txt or .pdf"}
	ErrFileTooLarge    = &ValidationError{msg: "file too large, maximum 5MB"}
	ErrUnknownCategory = &ValidationError{msg: "choose Produtivo or Improdutivo"}
	ErrSameCategory    = &ValidationError{msg: "choose a category different from the original"}
)

// TextLength counts UTF-16 code units, the unit the browser form counts in.
func TextLength(text string) int {
	n := 0
	for _, r := range text {
		if units := utf16.RuneLen(r); units > 0 {
			n += units
		} else {
			n++
		}
	}
	return n
}

func ValidateText(text string) error {
	n := TextLength(text)
	switch {
	case n < MinTextLength:
		return ErrTextTooShort
	case n > MaxTextLength:
		return ErrTextTooLong
	default:
		return nil
	}
}

func ValidateFile(file *Upload) error {
	if file == nil {
		return ErrFileMissing
	}
	if !AllowedMimeType(file.MimeType) {
		return ErrUnsupportedType
	}
	if file.Size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// AllowedMimeType compares the media type without parameters, so
// "text/plain; charset=utf-8" is accepted.
func AllowedMimeType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	for _, allowed := range AllowedMimeTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}
