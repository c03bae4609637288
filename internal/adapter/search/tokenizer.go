package search

import (
	"strings"
	"unicode"
)

// Tokenizer splits source text into lowercase search terms. Identifiers are
// broken at underscores and case changes, and the whole identifier is kept
// as a term of its own.
type Tokenizer struct {
	stopwords map[string]struct{}
}

func NewTokenizer() *Tokenizer {
	return &Tokenizer{stopwords: defaultStopwords()}
}

func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		parts := splitIdentifier(word)
		for _, part := range parts {
			tokens = t.appendTerm(tokens, part)
		}
		if len(parts) > 1 {
			tokens = t.appendTerm(tokens, word)
		}
	}

	return tokens
}

func (t *Tokenizer) appendTerm(tokens []string, word string) []string {
	word = strings.ToLower(word)
	if len(word) < 2 {
		return tokens
	}
	if _, isStop := t.stopwords[word]; isStop {
		return tokens
	}
	return append(tokens, word)
}

// splitWords splits text into runs of letters, digits and underscores.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

// splitIdentifier breaks an identifier at underscores, at lower-to-upper
// case changes and before the last capital of an acronym:
// "parseHTTPRequest_v2" gives parse, HTTP, Request, v2.
func splitIdentifier(word string) []string {
	runes := []rune(word)
	var parts []string
	start := 0
	flush := func(end int) {
		if end > start {
			parts = append(parts, string(runes[start:end]))
		}
	}

	for i, r := range runes {
		if r == '_' {
			flush(i)
			start = i + 1
			continue
		}
		if i <= start {
			continue
		}
		prev := runes[i-1]
		switch {
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush(i)
			start = i
		case unicode.IsLower(r) && unicode.IsUpper(prev) && i-1 > start && unicode.IsUpper(runes[i-2]):
			flush(i - 1)
			start = i - 1
		}
	}
	flush(len(runes))

	return parts
}

// defaultStopwords returns common English words and the keywords of the
// supported languages, which match nearly every chunk.
func defaultStopwords() map[string]struct{} {
	stops := []string{
		"an", "and", "are", "as", "at", "be", "by", "for", "from", "in", "is",
		"it", "its", "of", "on", "or", "that", "the", "to", "with", "this",
		"def", "self", "return", "pass", "none", "true", "false", "null",
		"func", "fn", "var", "let", "const", "function", "class", "import",
		"export", "default", "if", "else", "elif", "while", "do", "new",
		"pub", "mut", "impl", "use", "struct", "type", "interface", "package",
		"public", "private", "internal", "external", "returns", "memory",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
