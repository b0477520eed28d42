// Package cli renders analysis results for the terminal and connects the
// presenter to the system clipboard.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/mail-check/internal/core/usecase"
)

const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the values accepted by -o.
var Formats = []string{FormatHuman, FormatJSON, FormatYAML}

func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Render writes view to w in the given format.
func Render(w io.Writer, view usecase.ResultView, format string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, view)
	case FormatYAML:
		return renderYAML(w, view)
	case FormatHuman, "":
		renderHuman(w, view)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (use %s)", format, strings.Join(Formats, ", "))
	}
}

func renderJSON(w io.Writer, view usecase.ResultView) error {
	output, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func renderYAML(w io.Writer, view usecase.ResultView) error {
	output, err := yaml.Marshal(view)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(output))
	return err
}

func renderHuman(w io.Writer, view usecase.ResultView) {
	label := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)
	label.Fprint(w, "Category:   ")
	toneColor(view.Tone).Fprintln(w, view.Category)

	if view.HasConfidence {
		label.Fprint(w, "Confidence: ")
		fmt.Fprintln(w, view.ConfidenceLabel())
	}
	if view.NeedsReview {
		color.New(color.FgYellow).Fprintln(w, "Low confidence: please review this classification.")
	}

	if view.HasReply() {
		fmt.Fprintln(w)
		color.New(color.FgCyan, color.Bold).Fprintln(w, "Suggested reply:")
		for _, line := range strings.Split(view.Reply, "\n") {
			fmt.Fprintf(w, "   %s\n", line)
		}
	}
	fmt.Fprintln(w)
}

func toneColor(tone usecase.Tone) *color.Color {
	if tone == usecase.ToneGreen {
		return color.New(color.FgGreen, color.Bold)
	}
	return color.New(color.FgYellow, color.Bold)
}
