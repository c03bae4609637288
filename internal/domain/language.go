package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

type Language string

const (
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangSolidity   Language = "solidity"
)

// Languages lists every language with a registered processor, in display
// order.
var Languages = []Language{
	LangPython,
	LangJavaScript,
	LangTypeScript,
	LangGo,
	LangRust,
	LangSolidity,
}

var languageAliases = map[string]Language{
	"python":     LangPython,
	"py":         LangPython,
	"javascript": LangJavaScript,
	"js":         LangJavaScript,
	"jsx":        LangJavaScript,
	"typescript": LangTypeScript,
	"ts":         LangTypeScript,
	"tsx":        LangTypeScript,
	"go":         LangGo,
	"golang":     LangGo,
	"rust":       LangRust,
	"rs":         LangRust,
	"solidity":   LangSolidity,
	"sol":        LangSolidity,
}

var extensionLanguages = map[string]Language{
	".py":  LangPython,
	".pyi": LangPython,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
	".mjs": LangJavaScript,
	".cjs": LangJavaScript,
	".ts":  LangTypeScript,
	".tsx": LangTypeScript,
	".mts": LangTypeScript,
	".cts": LangTypeScript,
	".go":  LangGo,
	".rs":  LangRust,
	".sol": LangSolidity,
}

// ParseLanguage resolves a language tag or common alias.
func ParseLanguage(tag string) (Language, error) {
	if lang, ok := languageAliases[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return lang, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, tag)
}

// LanguageForPath detects the language from a file extension.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

func Extensions() []string {
	exts := make([]string, 0, len(extensionLanguages))
	for ext := range extensionLanguages {
		exts = append(exts, ext)
	}
	return NameSet(exts)
}
