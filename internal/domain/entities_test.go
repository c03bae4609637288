package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdit(t *testing.T) {
	tests := []struct {
		name   string
		edit   Edit
		insert bool
		lines  []string
		delta  int
	}{
		{"replace one line", Edit{StartLine: 3, EndLine: 3, Text: "x"}, false, []string{"x"}, 0},
		{"replace with more", Edit{StartLine: 3, EndLine: 4, Text: "a\nb\nc"}, false, []string{"a", "b", "c"}, 1},
		{"delete", Edit{StartLine: 2, EndLine: 5}, false, nil, -4},
		{"insert", Edit{StartLine: 4, EndLine: 3, Text: "a\n"}, true, []string{"a", ""}, 2},
		{"empty insert", Edit{StartLine: 1, EndLine: 0}, true, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.insert, tt.edit.IsInsert())
			assert.Equal(t, tt.lines, tt.edit.NewLines())
			assert.Equal(t, tt.delta, tt.edit.Delta())
		})
	}
}

func TestSplitAndJoinLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{""}, SplitLines(""))
	assert.Equal(t, "a\nb\n", JoinLines(SplitLines("a\nb\n")))
}

func TestSortChunks(t *testing.T) {
	chunks := []Chunk{
		{Name: "m", StartLine: 2, EndLine: 3},
		{Name: "later", StartLine: 5, EndLine: 6},
		{Name: "K", StartLine: 2, EndLine: 8},
		{Name: "first", StartLine: 1, EndLine: 1},
	}
	SortChunks(chunks)

	var names []string
	for _, c := range chunks {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"first", "K", "m", "later"}, names)
}

func TestChunkSpans(t *testing.T) {
	outer := Chunk{StartLine: 2, EndLine: 8}
	inner := Chunk{StartLine: 3, EndLine: 5}

	assert.True(t, outer.Contains(inner))
	assert.True(t, outer.StrictlyContains(inner))
	assert.True(t, outer.Contains(outer))
	assert.False(t, outer.StrictlyContains(outer))
	assert.False(t, inner.Contains(outer))
	assert.Equal(t, 7, outer.Lines())

	moved := inner.Shift(4)
	assert.Equal(t, 7, moved.StartLine)
	assert.Equal(t, 9, moved.EndLine)
	assert.Equal(t, 3, inner.StartLine)
}

func TestNameSet(t *testing.T) {
	assert.Equal(t, []string{}, NameSet(nil))
	assert.Equal(t, []string{"a", "b"}, NameSet([]string{"b", "", "a", "b"}))
}

func TestParseLanguage(t *testing.T) {
	for tag, want := range map[string]Language{
		"py":       LangPython,
		" TSX ":    LangTypeScript,
		"golang":   LangGo,
		"Solidity": LangSolidity,
	} {
		got, err := ParseLanguage(tag)
		require.NoError(t, err, tag)
		assert.Equal(t, want, got, tag)
	}

	_, err := ParseLanguage("cobol")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)

	lang, ok := LanguageForPath("src/App.TSX")
	assert.True(t, ok)
	assert.Equal(t, LangTypeScript, lang)

	_, ok = LanguageForPath("README.md")
	assert.False(t, ok)
}

func TestChunkJSON_KeepsMetadataType(t *testing.T) {
	chunks := []Chunk{
		{Kind: KindMethod, Name: "area", StartLine: 3, EndLine: 5, Code: "fn area() {}", Confidence: 1, Meta: &RustMeta{RustType: "fn", ClassName: "Point", IsPublic: true}},
		{Kind: KindComponent, Name: "App", StartLine: 1, EndLine: 9, Code: "function App() {}", Confidence: 0.8, Oversized: true, Meta: &ComponentMeta{ComponentType: "function", HasJSX: true, HooksUsed: []string{"useState"}}},
		{Kind: KindFunction, Name: "plain", StartLine: 1, EndLine: 1, Code: "x", Confidence: 1},
	}

	data, err := json.Marshal(chunks)
	require.NoError(t, err)

	var got []Chunk
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, chunks, got)
	assert.Equal(t, "Point", got[0].ClassName())
	assert.Empty(t, got[2].ClassName())
}

func TestChunkJSON_UnknownMetadataType(t *testing.T) {
	var c Chunk
	err := json.Unmarshal([]byte(`{"kind":"function","metadata_type":"cobol","metadata":{}}`), &c)
	assert.Error(t, err)
}
