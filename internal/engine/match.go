package engine

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// matchSuffixes are stripped before comparing a candidate name with page
// evidence. Broader than the legal forms the validity gate requires.
var matchSuffixes = []string{
	"株式会社", "(株)", "（株）",
	"有限会社", "(有)", "（有）",
	"合同会社", "合資会社", "合名会社",
	"一般社団法人", "一般財団法人", "公益社団法人", "公益財団法人",
	"特定非営利活動法人", "npo法人",
	"inc.", "co.,ltd.", "ltd.", "corp.", "llc", "llp",
	"corporation", "company", "co.",
}

var matchJunkRe = regexp.MustCompile(`[\s　・\-\(\)（）【】「」『』\[\]]+`)

// matchKey reduces a name or text block to its comparable core: lower-cased,
// legal forms removed, whitespace and decoration removed.
func matchKey(s string) string {
	k := strings.ToLower(s)
	for _, suffix := range matchSuffixes {
		k = strings.ReplaceAll(k, suffix, "")
	}
	return strings.TrimSpace(matchJunkRe.ReplaceAllString(k, ""))
}

// sectionSelectors are where a company usually prints its own name.
var sectionSelectors = []string{
	"header", "footer", ".company", "#company", ".about", "#about", ".corp", "#corp",
}

// CheckCompanyMatch reports whether the page plausibly belongs to the named
// company. Names too short to compare are accepted.
func CheckCompanyMatch(companyName string, doc *goquery.Document) bool {
	name := matchKey(companyName)
	if utf8.RuneCountInString(name) < 2 {
		return true
	}

	title := matchKey(doc.Find("title").First().Text())
	ogSiteName := ""
	if content, ok := doc.Find(`meta[property="og:site_name"]`).First().Attr("content"); ok {
		ogSiteName = matchKey(content)
	}

	if strings.Contains(title, name) || strings.Contains(ogSiteName, name) {
		return true
	}
	// Symmetric fallback: the site may print a short brand the search title
	// decorated further.
	if utf8.RuneCountInString(title) >= 2 && strings.Contains(name, title) {
		return true
	}
	if utf8.RuneCountInString(ogSiteName) >= 2 && strings.Contains(name, ogSiteName) {
		return true
	}

	for _, selector := range sectionSelectors {
		found := false
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if strings.Contains(matchKey(s.Text()), name) {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}

	if utf8.RuneCountInString(name) >= 3 {
		body := doc.Clone()
		body.Find("script, style, noscript").Remove()
		if strings.Contains(matchKey(body.Text()), name) {
			return true
		}
	}
	return false
}
