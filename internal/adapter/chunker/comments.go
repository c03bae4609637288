package chunker

import (
	"regexp"
	"strings"

	"codechunk/internal/domain"
)

type CommentBlock struct {
	Text      string
	StartLine int
	EndLine   int
	Type      string

	// codeAfter is set when code follows the block's closing marker on
	// its last line.
	codeAfter bool
}

type commentPatterns struct {
	lineComment *regexp.Regexp
	blockStart  *regexp.Regexp
	blockEnd    *regexp.Regexp
}

var (
	slashComments = commentPatterns{
		lineComment: regexp.MustCompile(`^\s*//(.*)$`),
		blockStart:  regexp.MustCompile(`^\s*/\*`),
		blockEnd:    regexp.MustCompile(`\*/`),
	}
	hashComments = commentPatterns{
		lineComment: regexp.MustCompile(`^\s*#(.*)$`),
		blockStart:  regexp.MustCompile(`^\s*[rRuU]?(?:'''|""")`),
		blockEnd:    regexp.MustCompile(`(?:'''|""")`),
	}
)

func patternsFor(lang domain.Language) commentPatterns {
	if lang == domain.LangPython {
		return hashComments
	}
	return slashComments
}

// ExtractComments returns the comment blocks of content that start at the
// beginning of a line. Consecutive line comments merge into one block.
func ExtractComments(content string, lang domain.Language) []CommentBlock {
	patterns := patternsFor(lang)
	lines := domain.SplitLines(content)
	var comments []CommentBlock

	inBlockComment := false
	blockStartLine := 0
	var blockContent strings.Builder

	for lineNum, line := range lines {
		lineNumber := lineNum + 1

		if inBlockComment {
			blockContent.WriteString(line)
			blockContent.WriteString("\n")
			if end := patterns.blockEnd.FindStringIndex(line); end != nil {
				comments = append(comments, CommentBlock{
					Text:      strings.TrimSpace(blockContent.String()),
					StartLine: blockStartLine,
					EndLine:   lineNumber,
					Type:      "block",
					codeAfter: strings.TrimSpace(line[end[1]:]) != "",
				})
				inBlockComment = false
				blockContent.Reset()
			}
			continue
		}

		if loc := patterns.blockStart.FindStringIndex(line); loc != nil {
			if end := patterns.blockEnd.FindStringIndex(line[loc[1]:]); end != nil {
				comments = append(comments, CommentBlock{
					Text:      strings.TrimSpace(line[loc[1] : loc[1]+end[0]]),
					StartLine: lineNumber,
					EndLine:   lineNumber,
					Type:      "block",
					codeAfter: strings.TrimSpace(line[loc[1]+end[1]:]) != "",
				})
			} else {
				inBlockComment = true
				blockStartLine = lineNumber
				blockContent.WriteString(line)
				blockContent.WriteString("\n")
			}
			continue
		}

		if matches := patterns.lineComment.FindStringSubmatch(line); len(matches) > 1 {
			comments = append(comments, CommentBlock{
				Text:      strings.TrimSpace(matches[1]),
				StartLine: lineNumber,
				EndLine:   lineNumber,
				Type:      "line",
			})
		}
	}

	return mergeConsecutiveComments(comments)
}

func mergeConsecutiveComments(comments []CommentBlock) []CommentBlock {
	if len(comments) <= 1 {
		return comments
	}

	var merged []CommentBlock
	i := 0

	for i < len(comments) {
		current := comments[i]

		if current.Type != "line" {
			merged = append(merged, current)
			i++
			continue
		}

		var textBuilder strings.Builder
		textBuilder.WriteString(current.Text)
		endLine := current.EndLine

		j := i + 1
		for j < len(comments) {
			next := comments[j]
			if next.Type != "line" || next.StartLine != endLine+1 {
				break
			}
			textBuilder.WriteString("\n")
			textBuilder.WriteString(next.Text)
			endLine = next.EndLine
			j++
		}

		merged = append(merged, CommentBlock{
			Text:      textBuilder.String(),
			StartLine: current.StartLine,
			EndLine:   endLine,
			Type:      "line",
		})
		i = j
	}

	return merged
}

// stripLeadingComments moves a chunk's start below the comment blocks that
// open it. A chunk made only of comments is left as is, and a line where
// code follows a closing block marker is kept.
func stripLeadingComments(c domain.Chunk, lang domain.Language) domain.Chunk {
	first := 1
	for _, block := range ExtractComments(c.Code, lang) {
		if block.StartLine != first {
			break
		}
		if block.codeAfter {
			first = block.EndLine
			break
		}
		first = block.EndLine + 1
	}
	lines := domain.SplitLines(c.Code)
	if first == 1 || first > len(lines) {
		return c
	}
	c.StartLine += first - 1
	c.Code = domain.JoinLines(lines[first-1:])
	return c
}
