package chunker

import (
	"testing"

	"codechunk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractComments_Slash(t *testing.T) {
	src := "// first\n// second\nfunc x() {}\n/* block\n   more */\n/* single */\n"
	comments := ExtractComments(src, domain.LangGo)

	require.Len(t, comments, 3)
	assert.Equal(t, CommentBlock{Text: "first\nsecond", StartLine: 1, EndLine: 2, Type: "line"}, comments[0])
	assert.Equal(t, 4, comments[1].StartLine)
	assert.Equal(t, 5, comments[1].EndLine)
	assert.Equal(t, "block", comments[1].Type)
	assert.Equal(t, CommentBlock{Text: "single", StartLine: 6, EndLine: 6, Type: "block"}, comments[2])
}

func TestExtractComments_Hash(t *testing.T) {
	src := "# one\n\n# two\ndef f():\n    \"\"\"doc\"\"\"\n"
	comments := ExtractComments(src, domain.LangPython)

	require.Len(t, comments, 3)
	assert.Equal(t, "one", comments[0].Text)
	assert.Equal(t, "two", comments[1].Text)
	assert.Equal(t, 3, comments[1].StartLine)
	assert.Equal(t, CommentBlock{Text: "doc", StartLine: 5, EndLine: 5, Type: "block"}, comments[2])
}

func TestStripLeadingComments(t *testing.T) {
	c := domain.Chunk{StartLine: 10, EndLine: 13, Code: "// a\n// b\nfunc f() {\n}"}
	out := stripLeadingComments(c, domain.LangGo)
	assert.Equal(t, 12, out.StartLine)
	assert.Equal(t, 13, out.EndLine)
	assert.Equal(t, "func f() {\n}", out.Code)

	onlyComments := domain.Chunk{StartLine: 1, EndLine: 2, Code: "// a\n// b"}
	assert.Equal(t, onlyComments, stripLeadingComments(onlyComments, domain.LangGo))

	noComments := domain.Chunk{StartLine: 3, EndLine: 3, Code: "func g() {}"}
	assert.Equal(t, noComments, stripLeadingComments(noComments, domain.LangGo))
}

func TestStripLeadingComments_KeepsCodeAfterBlock(t *testing.T) {
	inline := domain.Chunk{StartLine: 1, EndLine: 3, Code: "/* a */ function f() {\n  return 1;\n}"}
	assert.Equal(t, inline, stripLeadingComments(inline, domain.LangJavaScript))

	spanning := domain.Chunk{StartLine: 5, EndLine: 7, Code: "/* a\n   b */ function f() {\n}"}
	out := stripLeadingComments(spanning, domain.LangJavaScript)
	assert.Equal(t, 6, out.StartLine)
	assert.Equal(t, "   b */ function f() {\n}", out.Code)

	comments := ExtractComments("/* a */ function f() {}\n", domain.LangJavaScript)
	require.Len(t, comments, 1)
	assert.Equal(t, "a", comments[0].Text)
}

func TestParse_ExcludeCommentsKeepsDeclarationLine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IncludeComments = false
	res := parseWith(t, cfg, "/* a */ function f() {\n  return 1;\n}\n", "javascript")

	f := mustFind(t, res, domain.KindFunction, "f")
	assert.Equal(t, 1, f.StartLine)
	assert.Equal(t, 3, f.EndLine)
	assert.Equal(t, "/* a */ function f() {\n  return 1;\n}", f.Code)
}
