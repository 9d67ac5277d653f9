package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rodeoai/ingest/internal/models"
)

// TextExtractor is the opaque OCR/text-extraction capability backing the
// document and image parsers. Implementations are external to this
// repository.
type TextExtractor interface {
	ExtractText(ctx context.Context, content []byte) (string, error)
}

// StubExtractor stands in until a real OCR backend is wired. It reports
// the payload size so downstream review entries stay informative.
type StubExtractor struct{}

func (StubExtractor) ExtractText(ctx context.Context, content []byte) (string, error) {
	return fmt.Sprintf("extracted text unavailable (%d bytes)", len(content)), nil
}

var (
	datePattern  = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`)
	scorePattern = regexp.MustCompile(`\b\d{1,3}\.\d{1,2}\b`)
)

const extractedTextPreview = 500

// parseFreeText pulls date and score tokens out of unstructured text.
// Structure is never verified here, so the set is always review-flagged.
func parseFreeText(text, source string) *models.RecordSet {
	preview := text
	if len(preview) > extractedTextPreview {
		cut := extractedTextPreview
		// Back off to a rune boundary so the preview stays valid UTF-8.
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	return &models.RecordSet{
		Source:         source,
		ExtractedText:  preview,
		DetectedDates:  datePattern.FindAllString(text, -1),
		DetectedScores: scorePattern.FindAllString(text, -1),
		NeedsReview:    true,
	}
}

// DocumentParser handles PDF documents through a text extractor.
type DocumentParser struct {
	extractor TextExtractor
}

func NewDocumentParser(extractor TextExtractor) *DocumentParser {
	if extractor == nil {
		extractor = StubExtractor{}
	}
	return &DocumentParser{extractor: extractor}
}

func (p *DocumentParser) SupportsType(declaredType string) bool {
	return strings.Contains(strings.ToLower(declaredType), "pdf")
}

func (p *DocumentParser) SupportsExtension(filename string) bool {
	return hasExtension(filename, ".pdf")
}

func (p *DocumentParser) Parse(ctx context.Context, content []byte, filename string) (*models.RecordSet, error) {
	text, err := p.extractor.ExtractText(ctx, content)
	if err != nil {
		return nil, &ExtractionError{Filename: filename, Err: err}
	}
	return parseFreeText(text, filename), nil
}

// ImageParser handles scanned images through the same extractor contract.
type ImageParser struct {
	extractor TextExtractor
}

func NewImageParser(extractor TextExtractor) *ImageParser {
	if extractor == nil {
		extractor = StubExtractor{}
	}
	return &ImageParser{extractor: extractor}
}

func (p *ImageParser) SupportsType(declaredType string) bool {
	t := strings.ToLower(declaredType)
	return strings.Contains(t, "jpg") || strings.Contains(t, "jpeg") || strings.Contains(t, "png")
}

func (p *ImageParser) SupportsExtension(filename string) bool {
	return hasExtension(filename, ".jpg", ".jpeg", ".png")
}

func (p *ImageParser) Parse(ctx context.Context, content []byte, filename string) (*models.RecordSet, error) {
	text, err := p.extractor.ExtractText(ctx, content)
	if err != nil {
		return nil, &ExtractionError{Filename: filename, Err: err}
	}
	return parseFreeText(text, filename), nil
}

// PlainTextParser decodes UTF-8 text and runs the same pattern
// extraction. The output is review-flagged as well since no validated
// schema exists for free text.
type PlainTextParser struct{}

func (p *PlainTextParser) SupportsType(declaredType string) bool {
	return strings.Contains(strings.ToLower(declaredType), "text")
}

func (p *PlainTextParser) SupportsExtension(filename string) bool {
	return hasExtension(filename, ".txt")
}

func (p *PlainTextParser) Parse(ctx context.Context, content []byte, filename string) (*models.RecordSet, error) {
	if !utf8.Valid(content) {
		return nil, &ExtractionError{Filename: filename, Err: fmt.Errorf("content is not valid UTF-8")}
	}
	return parseFreeText(string(content), filename), nil
}
