package engine

import (
	"net/url"
	"strings"
)

// Candidate is a search result that passed the pre-LLM filters but has not
// been cleansed yet. Domain is the lower-cased authority of URL without a
// leading "www.".
type Candidate struct {
	CompanyName string `json:"company_name"`
	URL         string `json:"url"`
	Domain      string `json:"domain"`
	Snippet     string `json:"snippet,omitempty"`
}

// ScrapeErrorKind classifies the outcome of scraping one candidate.
type ScrapeErrorKind string

const (
	ScrapeOK              ScrapeErrorKind = ""
	ScrapeTopPageFailed   ScrapeErrorKind = "top_page_failed"
	ScrapeCompanyMismatch ScrapeErrorKind = "company_mismatch"
)

// EnrichedRecord is the per-candidate scraping result. When Error is non-empty,
// ContactURL and Phone are empty; otherwise each is best-effort.
type EnrichedRecord struct {
	CompanyName string          `json:"company_name"`
	BaseURL     string          `json:"base_url"`
	ContactURL  string          `json:"contact_url"`
	Phone       string          `json:"phone"`
	Domain      string          `json:"domain"`
	Error       ScrapeErrorKind `json:"error"`
}

// HasContact reports whether the record carries at least one contact channel.
func (r EnrichedRecord) HasContact() bool {
	return r.ContactURL != "" || r.Phone != ""
}

// ExtractDomain returns the authority of rawURL, lower-cased and without a
// "www." prefix. Falls back to the input on parse failure.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(strings.ToLower(rawURL), "www.")
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// NormalizeToTopPage reduces a URL to scheme://authority/.
func NormalizeToTopPage(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host + "/"
}

// SameDomain reports whether two URLs share an authority.
func SameDomain(url1, url2 string) bool {
	return ExtractDomain(url1) == ExtractDomain(url2)
}
