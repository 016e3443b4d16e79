package language

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language is a translation target offered to the user.
type Language struct {
	Code string // backend code, e.g. "zh-CN"
	Name string // native display name
	Tag  language.Tag
}

// DefaultTarget is the language used when none is configured.
const DefaultTarget = "zh-CN"

// AutoDetect is the source language sent with every paragraph translation.
const AutoDetect = "auto"

var catalogue = []struct{ code, name string }{
	{"zh-CN", "中文（简体）"},
	{"zh-TW", "中文（繁體）"},
	{"en", "English"},
	{"ja", "日本語"},
	{"ko", "한국어"},
	{"fr", "Français"},
	{"de", "Deutsch"},
	{"es", "Español"},
	{"ru", "Русский"},
	{"ar", "العربية"},
	{"pt", "Português"},
	{"it", "Italiano"},
}

// Languages maps backend code -> Language.
var Languages = func() map[string]Language {
	m := make(map[string]Language, len(catalogue))
	for _, c := range catalogue {
		m[c.code] = Language{Code: c.code, Name: c.name, Tag: language.MustParse(c.code)}
	}
	return m
}()

// GetLanguage resolves a code exactly, then by BCP 47 equivalence
// ("zh_cn", "ZH-cn" and "zh-Hans-CN" all resolve to "zh-CN").
func GetLanguage(code string) (Language, bool) {
	if lang, ok := Languages[code]; ok {
		return lang, true
	}
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if err != nil {
		return Language{}, false
	}
	for _, lang := range Languages {
		if lang.Tag == tag {
			return lang, true
		}
	}
	matcher := language.NewMatcher(tags())
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return Language{}, false
	}
	return Languages[catalogue[idx].code], true
}

// EnglishName returns the English display name for a supported code.
func EnglishName(code string) string {
	lang, ok := GetLanguage(code)
	if !ok {
		return ""
	}
	return display.English.Tags().Name(lang.Tag)
}

func tags() []language.Tag {
	out := make([]language.Tag, len(catalogue))
	for i, c := range catalogue {
		out[i] = Languages[c.code].Tag
	}
	return out
}

// GetSupportedLanguages returns the catalogue sorted by code.
func GetSupportedLanguages() []Language {
	entries := make([]Language, 0, len(Languages))
	for _, v := range Languages {
		entries = append(entries, v)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Code < entries[j].Code
	})
	return entries
}
