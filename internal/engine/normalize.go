package engine

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// corporateForms are the legal-form markers a real company name must carry.
var corporateForms = []string{"株式会社", "有限会社", "合同会社", "合名会社", "合資会社", "(株)", "（株）"}

func hasCorporateForm(s string) bool {
	for _, form := range corporateForms {
		if strings.Contains(s, form) {
			return true
		}
	}
	return false
}

// normStep is one ordered transformation of the name normalizer. Steps are
// kept as a table so each can be exercised on its own.
type normStep struct {
	name  string
	apply func(string) string
}

var normSteps = []normStep{
	{"fold_width", foldWidth},
	{"split_pipe", splitOnAny([]string{"|", "｜", "│"}, 0)},
	{"split_dash", splitOnAny([]string{" - "}, 0)},
	{"split_sentence", splitSentence},
	{"strip_brackets", stripBrackets},
	{"strip_parens", stripParens},
	{"strip_site_suffix", stripSiteSuffix},
	{"strip_label_prefix", stripLabelPrefix},
	{"extract_after_nara", extractAfterNara},
	{"extract_corporate_span", extractCorporateSpan},
	{"join_spaced_letters", joinSpacedLetters},
	{"collapse_spaces", collapseSpaces},
}

// NormalizeCompanyName runs the ordered normalization steps over a raw title
// or LLM output. A name reduced to a bare legal-form token becomes "".
func NormalizeCompanyName(name string) string {
	s := name
	for _, step := range normSteps {
		s = step.apply(s)
	}
	for _, form := range corporateForms {
		if s == form {
			return ""
		}
	}
	return s
}

// foldWidth converts full-width ASCII to half-width. Kana and kanji are
// untouched; U+3000 becomes a plain space.
func foldWidth(s string) string {
	return strings.ReplaceAll(width.Fold.String(s), "　", " ")
}

// splitOnAny splits on the first separator present and keeps the first
// fragment carrying a corporate form, else the fragment at fallbackIdx.
func splitOnAny(seps []string, fallbackIdx int) func(string) string {
	return func(s string) string {
		for _, sep := range seps {
			if !strings.Contains(s, sep) {
				continue
			}
			frags := strings.Split(s, sep)
			for _, f := range frags {
				if hasCorporateForm(f) {
					return strings.TrimSpace(f)
				}
			}
			if fallbackIdx < len(frags) {
				return strings.TrimSpace(frags[fallbackIdx])
			}
			return strings.TrimSpace(frags[0])
		}
		return s
	}
}

// splitSentence applies the fragment rule on sentence-like separators, but
// only when the name is long enough to plausibly be a headline.
func splitSentence(s string) string {
	if utf8.RuneCountInString(s) <= 20 {
		return s
	}
	return splitOnAny([]string{"。", "：", ":"}, 0)(s)
}

var (
	cornerBracketRe = regexp.MustCompile(`【[^】]*】|「[^」]*」`)
	parenRe         = regexp.MustCompile(`（[^）]*）|\([^)]*\)`)
	siteSuffixRe    = regexp.MustCompile(`(の)?(公式サイト|公式ホームページ|公式HP|ホームページ|Webサイト|オフィシャルサイト|コーポレートサイト)$|へようこそ$`)
	labelPrefixRe   = regexp.MustCompile(`^(沿革|会社概要|会社案内|企業情報|採用|HOME|TOP|トップ)\s*[:：\-｜|]\s*`)
)

// stripBrackets removes decorated segments. An unmatched opening bracket
// splits the name instead; the fragment with a corporate form wins.
func stripBrackets(s string) string {
	out := cornerBracketRe.ReplaceAllString(s, "")
	if i := strings.Index(out, "【"); i >= 0 {
		pre, post := out[:i], out[i+len("【"):]
		if hasCorporateForm(post) {
			out = post
		} else {
			out = pre
		}
	}
	out = strings.ReplaceAll(out, "】", "")
	out = strings.ReplaceAll(out, "「", "")
	out = strings.ReplaceAll(out, "」", "")
	return strings.TrimSpace(out)
}

func stripParens(s string) string {
	out := parenRe.ReplaceAllString(s, "")
	for _, c := range []string{"（", "）", "(", ")"} {
		out = strings.ReplaceAll(out, c, "")
	}
	return strings.TrimSpace(out)
}

func stripSiteSuffix(s string) string {
	return strings.TrimSpace(siteSuffixRe.ReplaceAllString(s, ""))
}

func stripLabelPrefix(s string) string {
	return strings.TrimSpace(labelPrefixRe.ReplaceAllString(s, ""))
}

// extractAfterNara pulls the company out of catchphrase titles like
// "Web制作なら株式会社X". Applies only when the tail carries a corporate form.
func extractAfterNara(s string) string {
	i := strings.LastIndex(s, "なら")
	if i < 0 {
		return s
	}
	tail := strings.TrimSpace(s[i+len("なら"):])
	if hasCorporateForm(tail) {
		return tail
	}
	return s
}

// nameChar matches characters allowed inside a company name span.
const nameChar = `[^\s　、。｜|「」【】（）()！!？?]`

var (
	formLeadingRe  = regexp.MustCompile(`(株式会社|有限会社|合同会社|合名会社|合資会社)` + nameChar + `{1,15}`)
	formTrailingRe = regexp.MustCompile(nameChar + `{1,15}(株式会社|有限会社|合同会社|合名会社|合資会社)`)
)

// extractCorporateSpan trims clause-embedded names down to the legal-form
// span. The boundary guard keeps the step idempotent: a name that already is
// a clean span passes through unchanged.
func extractCorporateSpan(s string) string {
	for _, re := range []*regexp.Regexp{formLeadingRe, formTrailingRe} {
		loc := re.FindStringIndex(s)
		if loc == nil {
			continue
		}
		match := s[loc[0]:loc[1]]
		if match == s {
			return s
		}
		if boundaryAt(s, loc[0], true) && boundaryAt(s, loc[1], false) {
			return match
		}
	}
	return s
}

// boundaryAt reports whether position i sits at the string edge or next to a
// space, so a span is only cut out along natural word boundaries.
func boundaryAt(s string, i int, before bool) bool {
	if before {
		if i == 0 {
			return true
		}
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		return r == ' ' || r == '　'
	}
	if i == len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r == ' ' || r == '　'
}

var spacedLettersRe = regexp.MustCompile(`(?:\b[A-Za-z] )+[A-Za-z]\b`)

// joinSpacedLetters collapses letter-spaced words: "S k y" becomes "Sky".
func joinSpacedLetters(s string) string {
	return spacedLettersRe.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ReplaceAll(m, " ", "")
	})
}

var multiSpaceRe = regexp.MustCompile(`\s+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}
