package engine

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// invalidRule rejects a normalized name when its pattern matches. The rules
// are a table so each can be tested by name.
type invalidRule struct {
	name string
	re   *regexp.Regexp
}

var invalidRules = []invalidRule{
	{"association", regexp.MustCompile(`協会|連盟|連合会|工業会|商工会議所|組合$`)},
	{"media", regexp.MustCompile(`新聞|ニュース|ジャーナル|マガジン|メディア|通信社`)},
	{"education", regexp.MustCompile(`大学|専門学校|スクール|講座|セミナー|研修`)},
	{"roundup", regexp.MustCompile(`\d+選|比較|おすすめ|ランキング|TOP\d+|まとめ`)},
	{"catchphrase", regexp.MustCompile(`をお探し|を志す|を支援する|をサポート|にお任せ|お任せください`)},
	{"punctuation", regexp.MustCompile(`[！!。、]`)},
	{"recruitment", regexp.MustCompile(`求人|採用|転職|募集中`)},
}

var leftoverMarkers = []string{"|", "｜", "【", "】"}

// IsInvalidCompanyName is the final gate after normalization. True means the
// candidate is dropped.
func IsInvalidCompanyName(name string) bool {
	n := utf8.RuneCountInString(name)
	if n < 3 || n > 40 {
		return true
	}
	for _, m := range leftoverMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	if strings.HasSuffix(name, "...") || strings.HasSuffix(name, "…") {
		return true
	}
	for _, rule := range invalidRules {
		if rule.re.MatchString(name) {
			return true
		}
	}
	// A catchphrase ending in なら with a short tail is a slogan, not a name.
	if i := strings.Index(name, "なら"); i >= 0 {
		tail := name[i+len("なら"):]
		if !hasCorporateForm(tail) && utf8.RuneCountInString(tail) <= 6 {
			return true
		}
	}
	// A legal form buried deep in a sentence means the normalizer failed to
	// isolate the name.
	if idx := corporateFormIndex(name); idx >= 0 {
		if utf8.RuneCountInString(name[:idx]) > 20 {
			return true
		}
		return false
	}
	if englishFormRe.MatchString(name) {
		return false
	}
	// No legal form at all.
	return true
}

var englishFormRe = regexp.MustCompile(`(?i)\b(inc\.|co\.,?\s*ltd\.?|ltd\.?|corp\.?|llc|llp)`)

// corporateFormIndex returns the byte index of the earliest legal-form
// marker, or -1.
func corporateFormIndex(s string) int {
	idx := -1
	for _, form := range corporateForms {
		if i := strings.Index(s, form); i >= 0 && (idx < 0 || i < idx) {
			idx = i
		}
	}
	return idx
}
