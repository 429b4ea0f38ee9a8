// Package i18n provides locale-aware message lookup for the site.
//
// Unlike a CLI where one process serves one user, the server resolves the
// locale per request (from the visitor's locale cookie), so every lookup
// takes an explicit language code.
package i18n

import (
	"fmt"
	"strings"
)

// Supported languages
const (
	LangEN = "en"
	LangZH = "zh"
)

// messages stores all translations, keyed by language then message key.
var messages = map[string]map[string]string{}

func init() {
	loadEnglishMessages()
	loadChineseMessages()
}

// Normalize maps a raw locale value (cookie, Accept-Language prefix) to a
// supported language code. Unknown values fall back to English.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch {
	case lang == "en" || strings.HasPrefix(lang, "en-"):
		return LangEN
	case lang == "zh" || lang == "cn" || strings.HasPrefix(lang, "zh-"):
		return LangZH
	default:
		return LangEN
	}
}

// T returns the translated message for the given language and key.
// Falls back to English, then to the key itself.
func T(lang, key string) string {
	if msg, ok := messages[lang][key]; ok {
		return msg
	}
	if msg, ok := messages[LangEN][key]; ok {
		return msg
	}
	return key
}

// Sprintf returns the translated and formatted message.
func Sprintf(lang, key string, args ...any) string {
	return fmt.Sprintf(T(lang, key), args...)
}

// SupportedLanguages returns the language codes the site can serve.
func SupportedLanguages() []string {
	return []string{LangEN, LangZH}
}
