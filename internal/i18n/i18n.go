// Package i18n holds the bilingual string store used for every
// user-visible message. The active language is a single process-wide
// setting.
package i18n

import (
	"fmt"
	"strings"
	"sync"
)

// Lang is a supported UI language code.
type Lang string

const (
	English Lang = "en"
	Chinese Lang = "zh"
)

// Languages lists the supported languages in display order.
var Languages = []Lang{English, Chinese}

var (
	mu      sync.RWMutex
	current = English
)

// ParseLang maps a language code (en, en-US, zh, zh_CN, ...) to a
// supported language.
func ParseLang(code string) (Lang, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	switch {
	case code == "en" || strings.HasPrefix(code, "en-") || strings.HasPrefix(code, "en_"):
		return English, true
	case code == "zh" || strings.HasPrefix(code, "zh-") || strings.HasPrefix(code, "zh_"):
		return Chinese, true
	default:
		return English, false
	}
}

// SetLanguage selects the active language. Unknown codes fall back to
// English. Returns the language that was selected.
func SetLanguage(code string) Lang {
	lang, _ := ParseLang(code)
	mu.Lock()
	current = lang
	mu.Unlock()
	return lang
}

// Language returns the active language.
func Language() Lang {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// T renders the message for key in the active language. Arguments are
// applied with fmt.Sprintf. Keys missing from the catalog render as the
// key itself.
func T(key Key, args ...any) string {
	return TIn(Language(), key, args...)
}

// TIn renders the message for key in the given language.
func TIn(lang Lang, key Key, args ...any) string {
	format, ok := messages[lang][key]
	if !ok {
		format, ok = messages[English][key]
	}
	if !ok {
		return string(key)
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
