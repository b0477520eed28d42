package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/kirillkom/mail-check/internal/core/domain"
	"github.com/kirillkom/mail-check/internal/core/usecase"
)

func sampleView() usecase.ResultView {
	confidence := 0.42
	reply := "Obrigado pelo contato.\nRetornaremos em breve."
	return usecase.NewResultView(domain.AnalysisResult{
		Category:    domain.CategoryImprodutivo,
		Confidence:  &confidence,
		Reply:       &reply,
		NeedsReview: true,
	})
}

func TestRenderHuman(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	if err := Render(&out, sampleView(), FormatHuman); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Category:   Improdutivo",
		"Confidence: 42%",
		"please review",
		"   Obrigado pelo contato.\n   Retornaremos em breve.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
}

func TestRenderHumanHidesMissingParts(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	view := usecase.NewResultView(domain.AnalysisResult{Category: domain.CategoryProdutivo})
	if err := Render(&out, view, FormatHuman); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(out.String(), "Confidence") || strings.Contains(out.String(), "Suggested reply") {
		t.Fatalf("unexpected optional sections:\n%s", out.String())
	}
}

func TestRenderJSON(t *testing.T) {
	var out bytes.Buffer
	if err := Render(&out, sampleView(), FormatJSON); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["category"] != "Improdutivo" || decoded["tone"] != "yellow" || decoded["confidence_percent"] != float64(42) {
		t.Fatalf("unexpected JSON %v", decoded)
	}
}

func TestRenderYAML(t *testing.T) {
	var out bytes.Buffer
	if err := Render(&out, sampleView(), FormatYAML); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if decoded["category"] != "Improdutivo" || decoded["needs_review"] != true {
		t.Fatalf("unexpected YAML %v", decoded)
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	if err := Render(&bytes.Buffer{}, sampleView(), "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if ValidFormat("xml") || !ValidFormat(FormatYAML) {
		t.Fatalf("unexpected ValidFormat result")
	}
}
