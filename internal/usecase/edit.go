package usecase

import (
	"errors"
	"fmt"

	"codechunk/internal/adapter/incremental"
	"codechunk/internal/domain"
	"codechunk/internal/port"
)

// EditUseCase turns new file contents into line edits against the cached
// text and re-parses incrementally.
type EditUseCase struct {
	reparser *incremental.Reparser
	reader   port.FileReader
}

func NewEditUseCase(reparser *incremental.Reparser, reader port.FileReader) *EditUseCase {
	return &EditUseCase{reparser: reparser, reader: reader}
}

// ApplyEdits re-parses id after the given edits, numbered against the
// cached text.
func (u *EditUseCase) ApplyEdits(id string, edits []domain.Edit) (*domain.ParseResult, error) {
	return u.reparser.ParseIncremental(id, edits)
}

// ApplyText replaces the text of id with newText. Without a cache entry the
// text is parsed in full, with the language taken from id's extension.
func (u *EditUseCase) ApplyText(id, newText string) (*domain.ParseResult, error) {
	entry, err := u.reparser.Entry(id)
	if errors.Is(err, domain.ErrCacheMiss) {
		lang, ok := domain.LanguageForPath(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedLanguage, id)
		}
		return u.reparser.FullParse(id, string(lang), newText)
	}
	if err != nil {
		return nil, err
	}

	edit, changed, ok := DiffLines(entry.Lines(), domain.SplitLines(newText))
	switch {
	case !changed:
		return u.reparser.ParseIncremental(id, nil)
	case !ok:
		return u.reparser.FullParse(id, entry.Language, newText)
	}
	return u.reparser.ParseIncremental(id, []domain.Edit{edit})
}

// ApplyFile reads path and applies its contents as the new text of the
// entry with the same id.
func (u *EditUseCase) ApplyFile(path string) (*domain.ParseResult, error) {
	content, err := u.reader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return u.ApplyText(path, content)
}

// DiffLines reduces the change from oldLines to newLines to one edit that
// replaces the lines between their common prefix and common suffix. changed
// is false when the texts are equal. ok is false when the change cannot be
// expressed as a single edit, which happens only when newLines is one empty
// line.
func DiffLines(oldLines, newLines []string) (edit domain.Edit, changed, ok bool) {
	limit := min(len(oldLines), len(newLines))
	prefix := 0
	for prefix < limit && oldLines[prefix] == newLines[prefix] {
		prefix++
	}
	if prefix == len(oldLines) && prefix == len(newLines) {
		return domain.Edit{}, false, true
	}
	suffix := 0
	for suffix < limit-prefix && oldLines[len(oldLines)-1-suffix] == newLines[len(newLines)-1-suffix] {
		suffix++
	}

	// An edit's text of "" means deletion, so a replacement by a single
	// empty line takes one neighbouring line along.
	segment := newLines[prefix : len(newLines)-suffix]
	if len(segment) == 1 && segment[0] == "" {
		switch {
		case suffix > 0:
			suffix--
		case prefix > 0:
			prefix--
		default:
			return domain.Edit{}, true, false
		}
		segment = newLines[prefix : len(newLines)-suffix]
	}

	return domain.Edit{
		StartLine: prefix + 1,
		EndLine:   len(oldLines) - suffix,
		Text:      domain.JoinLines(segment),
	}, true, true
}
