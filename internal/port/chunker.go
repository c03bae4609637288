package port

import "codechunk/internal/domain"

type Chunker interface {
	Parse(content, language string) (*domain.ParseResult, error)

	// ParseRegion parses a slice of a larger text. The bool reports whether
	// the slice ended in the scanner's initial state.
	ParseRegion(content string, lang domain.Language) ([]domain.Chunk, bool, error)

	ExtractSymbols(content string, lang domain.Language) ([]domain.ImportRecord, []domain.ExportRecord, error)

	SafeAnchor(lang domain.Language, line string) bool

	Languages() []domain.Language
}
