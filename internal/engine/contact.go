package engine

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contactKeywords match contact-page links by href or anchor text.
var contactKeywords = []string{
	"contact", "inquiry", "enquiry", "toiawase", "otoiawase",
	"お問い合わせ", "お問合せ", "お問合わせ", "おといあわせ",
	"form", "mail", "support",
}

// commonContactPaths are probed in order when the top page links to no
// contact page.
var commonContactPaths = []string{
	"contact/",
	"contact",
	"inquiry/",
	"contact.html",
	"toiawase/",
	"otoiawase/",
	"form/",
	"contact-us/",
	"contactus/",
	"mail/",
	"support/",
	"info/",
	"ask/",
	"inquiry.html",
	"contact/index.html",
}

// contactScore ranks candidate links. Dedicated contact paths beat generic
// form links; shallow paths beat deep ones.
func contactScore(href, text string) int {
	score := 0
	h := strings.ToLower(href)
	t := strings.ToLower(text)

	if strings.Contains(h, "contact") {
		score += 10
	}
	if strings.Contains(h, "inquiry") {
		score += 10
	}
	if strings.Contains(h, "toiawase") {
		score += 10
	}
	if strings.Contains(t, "お問い合わせ") {
		score += 8
	}
	if strings.Contains(t, "お問合せ") {
		score += 8
	}
	if strings.Contains(h, "form") {
		score += 5
	}

	depth := strings.Count(href, "/")
	if bonus := 5 - depth; bonus > 0 {
		score += bonus
	}
	return score
}

// ExtractContactURL finds the best contact-page link in a top page. Fragment
// links are rejected except the literal #contact; external links are dropped.
// Returns "" when no link matches.
func ExtractContactURL(doc *goquery.Document, baseURL string) string {
	type scored struct {
		url   string
		score int
	}
	var candidates []scored

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := strings.ToLower(strings.TrimSpace(a.Text()))
		h := strings.ToLower(href)

		switch {
		case strings.HasPrefix(h, "mailto:"),
			strings.HasPrefix(h, "javascript:"),
			strings.HasPrefix(h, "tel:"):
			return
		}
		if strings.HasPrefix(href, "#") && h != "#contact" {
			return
		}
		if strings.HasPrefix(h, "http") && !SameDomain(baseURL, href) {
			return
		}

		for _, keyword := range contactKeywords {
			if !strings.Contains(h, keyword) && !strings.Contains(text, keyword) {
				continue
			}
			full := baseURL + "#contact"
			if h != "#contact" {
				full = resolveURL(baseURL, href)
			}
			candidates = append(candidates, scored{url: full, score: contactScore(href, text)})
			break
		}
	})

	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return candidates[0].url
}

// resolveURL makes a link absolute against the page it appeared on.
func resolveURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
