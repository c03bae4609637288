package search

import (
	"reflect"
	"testing"
)

func TestTokenizer_Identifiers(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("parseHTTPRequest_v2")
	want := []string{"parse", "http", "request", "v2", "parsehttprequest_v2"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("expected %v, got %v", want, tokens)
	}
}

func TestTokenizer_StopwordRemoval(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("def get_user(self): return self.user")
	want := []string{"get", "user", "get_user", "user"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("expected %v, got %v", want, tokens)
	}
}

func TestTokenizer_ShortWordRemoval(t *testing.T) {
	tok := NewTokenizer()

	tokens := tok.Tokenize("a I x y_z")
	for _, token := range tokens {
		if len(token) < 2 {
			t.Errorf("short word should be removed: %s", token)
		}
	}
	if len(tokens) != 1 || tokens[0] != "y_z" {
		t.Errorf("expected only the whole identifier y_z, got %v", tokens)
	}
}

func TestTokenizer_EmptyInput(t *testing.T) {
	tok := NewTokenizer()

	if tokens := tok.Tokenize(""); len(tokens) != 0 {
		t.Errorf("expected 0 tokens for empty input, got %d", len(tokens))
	}
	if tokens := tok.Tokenize("the function returns x"); len(tokens) != 0 {
		t.Errorf("expected only stopwords, got %v", tokens)
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"hello world", 2},
		{"hello_world", 1},
		{"hello-world", 2},
		{"func(x, y)", 3},
		{"CamelCase", 1},
		{"123numbers456", 1},
	}

	for _, tt := range tests {
		words := splitWords(tt.input)
		if len(words) != tt.expected {
			t.Errorf("splitWords(%q) = %d words, want %d: %v", tt.input, len(words), tt.expected, words)
		}
	}
}

func TestSplitIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"snake_case_name", []string{"snake", "case", "name"}},
		{"CamelCase", []string{"Camel", "Case"}},
		{"HTTPServer", []string{"HTTP", "Server"}},
		{"value2Go", []string{"value2", "Go"}},
		{"ALLCAPS", []string{"ALLCAPS"}},
		{"__init__", []string{"init"}},
		{"x", []string{"x"}},
	}

	for _, tt := range tests {
		if got := splitIdentifier(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitIdentifier(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
