package chunker

import (
	"fmt"

	"codechunk/internal/domain"
)

// Config is the orchestrator configuration. Sizes are in characters of a
// chunk's code; a zero MaxChunkSize disables the oversize flag.
type Config struct {
	MaxChunkSize        int                       `yaml:"max_chunk_size" json:"max_chunk_size"`
	MinChunkSize        int                       `yaml:"min_chunk_size" json:"min_chunk_size"`
	IncludeComments     bool                      `yaml:"include_comments" json:"include_comments"`
	ConfidenceThreshold float64                   `yaml:"confidence_threshold" json:"confidence_threshold"`
	LanguageSpecific    map[string]map[string]any `yaml:"language_specific_config,omitempty" json:"language_specific_config,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		MaxChunkSize:        10000,
		MinChunkSize:        0,
		IncludeComments:     true,
		ConfidenceThreshold: 0,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MinChunkSize < 0 || c.MaxChunkSize < 0:
		return fmt.Errorf("%w: chunk sizes must not be negative", domain.ErrInvalidConfig)
	case c.MaxChunkSize > 0 && c.MinChunkSize > c.MaxChunkSize:
		return fmt.Errorf("%w: min_chunk_size %d exceeds max_chunk_size %d", domain.ErrInvalidConfig, c.MinChunkSize, c.MaxChunkSize)
	case c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1:
		return fmt.Errorf("%w: confidence_threshold %.2f outside [0,1]", domain.ErrInvalidConfig, c.ConfidenceThreshold)
	}
	return nil
}

// Options returns the language-specific option set for lang, looked up by
// canonical tag or any alias.
func (c Config) Options(lang domain.Language) LanguageOptions {
	for tag, opts := range c.LanguageSpecific {
		if l, err := domain.ParseLanguage(tag); err == nil && l == lang {
			return opts
		}
	}
	return LanguageOptions{}
}

// CompositeChunker dispatches to the registered language processor and
// applies the configured filters to its output.
type CompositeChunker struct {
	cfg     Config
	parsers map[domain.Language]LanguageParser
}

func NewCompositeChunker(cfg Config) (*CompositeChunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &CompositeChunker{
		cfg:     cfg,
		parsers: make(map[domain.Language]LanguageParser),
	}
	c.Register(NewPythonParser(cfg.Options(domain.LangPython)))
	c.Register(NewJavaScriptParser(cfg.Options(domain.LangJavaScript)))
	c.Register(NewTypeScriptParser(cfg.Options(domain.LangTypeScript)))
	c.Register(NewGoParser(cfg.Options(domain.LangGo)))
	c.Register(NewRustParser(cfg.Options(domain.LangRust)))
	c.Register(NewSolidityParser(cfg.Options(domain.LangSolidity)))
	return c, nil
}

// Register adds or replaces the processor for its language.
func (c *CompositeChunker) Register(p LanguageParser) {
	c.parsers[p.Language()] = p
}

func (c *CompositeChunker) Config() Config {
	return c.cfg
}

func (c *CompositeChunker) Languages() []domain.Language {
	var langs []domain.Language
	for _, lang := range domain.Languages {
		if _, ok := c.parsers[lang]; ok {
			langs = append(langs, lang)
		}
	}
	return langs
}

func (c *CompositeChunker) parser(lang domain.Language) (LanguageParser, error) {
	p, ok := c.parsers[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, lang)
	}
	return p, nil
}

func (c *CompositeChunker) Parse(content, language string) (*domain.ParseResult, error) {
	lang, err := domain.ParseLanguage(language)
	if err != nil {
		return nil, err
	}
	p, err := c.parser(lang)
	if err != nil {
		return nil, err
	}
	ext := p.ExtractChunks(content)
	return &domain.ParseResult{
		Language: string(lang),
		Chunks:   c.filter(ext.Chunks, lang),
		Imports:  nonNil(p.ExtractImports(content)),
		Exports:  nonNil(p.ExtractExports(content)),
	}, nil
}

// ParseRegion extracts and filters the chunks of a slice of a larger text.
// settled reports whether the slice ended with nothing the text after it
// could extend.
func (c *CompositeChunker) ParseRegion(content string, lang domain.Language) ([]domain.Chunk, bool, error) {
	p, err := c.parser(lang)
	if err != nil {
		return nil, false, err
	}
	ext := p.ExtractChunks(content)
	return c.filter(ext.Chunks, lang), ext.Settled, nil
}

func (c *CompositeChunker) ExtractSymbols(content string, lang domain.Language) ([]domain.ImportRecord, []domain.ExportRecord, error) {
	p, err := c.parser(lang)
	if err != nil {
		return nil, nil, err
	}
	return nonNil(p.ExtractImports(content)), nonNil(p.ExtractExports(content)), nil
}

// SafeAnchor reports whether a re-scan of lang may start at line, beyond the
// zero-indentation rule every language shares.
func (c *CompositeChunker) SafeAnchor(lang domain.Language, line string) bool {
	if a, ok := c.parsers[lang].(anchorable); ok {
		return a.SafeAnchor(line)
	}
	return true
}

// filter applies comment stripping, the size bounds and the confidence
// threshold. A dropped chunk takes the chunks it contains with it.
func (c *CompositeChunker) filter(chunks []domain.Chunk, lang domain.Language) []domain.Chunk {
	domain.SortChunks(chunks)
	out := make([]domain.Chunk, 0, len(chunks))
	var dropped []domain.Chunk

	for _, ch := range chunks {
		if containedIn(dropped, ch) {
			dropped = append(dropped, ch)
			continue
		}
		original := ch
		if !c.cfg.IncludeComments {
			ch = stripLeadingComments(ch, lang)
		}
		size := len(ch.Code)
		if size < c.cfg.MinChunkSize || ch.Confidence < c.cfg.ConfidenceThreshold {
			dropped = append(dropped, original)
			continue
		}
		if c.cfg.MaxChunkSize > 0 && size > c.cfg.MaxChunkSize {
			ch.Oversized = true
		}
		out = append(out, ch)
	}
	domain.SortChunks(out)
	return out
}

func containedIn(dropped []domain.Chunk, ch domain.Chunk) bool {
	for _, d := range dropped {
		if d.Contains(ch) {
			return true
		}
	}
	return false
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
