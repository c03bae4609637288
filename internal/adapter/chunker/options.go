package chunker

import "strings"

// LanguageOptions is the free-form per-language section of the chunker
// config. Unknown keys are ignored.
type LanguageOptions map[string]any

func (o LanguageOptions) Bool(key string, def bool) bool {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(b) {
		case "true", "yes", "on", "1":
			return true
		case "false", "no", "off", "0":
			return false
		}
	case int:
		return b != 0
	}
	return def
}
