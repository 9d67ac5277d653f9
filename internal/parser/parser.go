package parser

import (
	"context"
	"errors"
	"fmt"

	"github.com/rodeoai/ingest/internal/models"
)

// ErrUnsupportedFormat is returned when no registered parser claims the
// submission's declared media type or filename extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ExtractionError wraps a parser-internal failure (malformed input) so the
// caller can distinguish it from dispatch failures.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Parser converts raw file bytes into a normalized record set. Each
// variant declares the media types and extensions it claims.
type Parser interface {
	Parse(ctx context.Context, content []byte, filename string) (*models.RecordSet, error)
	SupportsType(declaredType string) bool
	SupportsExtension(filename string) bool
}

// Registry holds ordered parsers and dispatches submissions to the first
// match. Declared media type wins over filename extension.
type Registry struct {
	parsers []Parser
}

// NewRegistry constructs a registry with the provided parsers. Order
// matters: the first parser claiming a type or extension wins.
func NewRegistry(parsers ...Parser) *Registry {
	return &Registry{parsers: parsers}
}

// NewDefaultRegistry wires the standard parser set. The text extractor
// backs the document and image variants.
func NewDefaultRegistry(extractor TextExtractor) *Registry {
	return NewRegistry(
		&TabularParser{},
		&SpreadsheetParser{},
		NewDocumentParser(extractor),
		NewImageParser(extractor),
		&HTMLParser{},
		&PlainTextParser{},
	)
}

// Find returns the first parser claiming the declared type, falling back
// to extension matching. Returns nil when nothing matches.
func (r *Registry) Find(filename, declaredType string) Parser {
	if r == nil {
		return nil
	}
	if declaredType != "" {
		for _, p := range r.parsers {
			if p.SupportsType(declaredType) {
				return p
			}
		}
	}
	for _, p := range r.parsers {
		if p.SupportsExtension(filename) {
			return p
		}
	}
	return nil
}

// Extract dispatches the submission to a matching parser and runs it.
func (r *Registry) Extract(ctx context.Context, content []byte, filename, declaredType string) (*models.RecordSet, error) {
	p := r.Find(filename, declaredType)
	if p == nil {
		return nil, fmt.Errorf("%w: type=%q filename=%q", ErrUnsupportedFormat, declaredType, filename)
	}
	rs, err := p.Parse(ctx, content, filename)
	if err != nil {
		return nil, err
	}
	return rs, nil
}
