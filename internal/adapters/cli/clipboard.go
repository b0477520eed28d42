package cli

import (
	"errors"

	"github.com/atotto/clipboard"
)

var ErrClipboardUnavailable = errors.New("no clipboard backend found, install xclip, xsel or wl-copy")

// SystemClipboard writes to the OS clipboard. On Linux it needs xclip,
// xsel or wl-copy on PATH.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	if !ClipboardAvailable() {
		return ErrClipboardUnavailable
	}
	return clipboard.WriteAll(text)
}

// ClipboardAvailable reports whether a clipboard backend was found.
func ClipboardAvailable() bool {
	return !clipboard.Unsupported
}
