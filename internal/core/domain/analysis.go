package domain

import (
	"strings"
	"unicode/utf8"
)

type Category string

const (
	CategoryProdutivo   Category = "Produtivo"
	CategoryImprodutivo Category = "Improdutivo"
)

// Categories lists the values offered when correcting a classification.
var Categories = []Category{CategoryProdutivo, CategoryImprodutivo}

func (c Category) Valid() bool {
	return c == CategoryProdutivo || c == CategoryImprodutivo
}

// ParseCategory accepts the backend spelling in any case, ignoring surrounding space.
func ParseCategory(raw string) (Category, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "produtivo":
		return CategoryProdutivo, true
	case "improdutivo":
		return CategoryImprodutivo, true
	default:
		return "", false
	}
}

type AnalysisResult struct {
	Category      Category `json:"category"`
	Confidence    *float64 `json:"confidence"`
	Reply         *string  `json:"reply"`
	NeedsReview   bool     `json:"needs_review"`
	ExtractedText *string  `json:"extracted_text"`
}

type Upload struct {
	Filename string
	MimeType string
	Size     int64
	Data     []byte
}

// AnalysisRequest carries either pasted text or an uploaded file. A file wins
// when both are set.
type AnalysisRequest struct {
	Text string
	File *Upload
}

func (r AnalysisRequest) HasFile() bool { return r.File != nil }

func (r AnalysisRequest) HasText() bool { return r.Text != "" }

type FeedbackRequest struct {
	OriginalCategory  Category
	CorrectedCategory Category
	TextPreview       string
}

func (f FeedbackRequest) Validate() error {
	if !f.OriginalCategory.Valid() || !f.CorrectedCategory.Valid() {
		return ErrUnknownCategory
	}
	if f.OriginalCategory == f.CorrectedCategory {
		return ErrSameCategory
	}
	return nil
}

func (f FeedbackRequest) Fields() FormFields {
	return FormFields{
		{Name: "original_category", Value: string(f.OriginalCategory)},
		{Name: "corrected_category", Value: string(f.CorrectedCategory)},
		{Name: "text_preview", Value: f.TextPreview},
	}
}

// FeedbackPreviewLimit matches what the backend keeps of a feedback preview.
const FeedbackPreviewLimit = 100

// PreviewOf trims text and cuts it to FeedbackPreviewLimit runes.
func PreviewOf(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= FeedbackPreviewLimit {
		return text
	}
	runes := []rune(text)
	return string(runes[:FeedbackPreviewLimit])
}
