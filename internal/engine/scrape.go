package engine

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// browserHeaders make candidate sites serve the same HTML a visitor gets.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "ja,en-US;q=0.7,en;q=0.3",
}

// maxFetchBytes caps response bodies; company pages past this size carry no
// extra contact info.
const maxFetchBytes = 2 << 20

// NewScrapeClient builds the HTTP client for candidate sites. Small company
// sites routinely run on expired or mismatched certificates, so verification
// is off. Redirects are followed up to 10 hops.
func NewScrapeClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
			MaxIdleConnsPerHost: 4,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
}

// fetchPage GETs url with browser headers and up to maxRetries extra
// attempts. Non-200 responses and transport errors both count as misses;
// returns "" when every attempt fails.
func fetchPage(ctx context.Context, url string, maxRetries int) string {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ""
		}
		metrics.ScrapeFetches.Add(1)
		html, err := fetchOnce(ctx, url)
		if err == nil {
			return html
		}
		slog.Debug("fetch failed", slog.String("url", url), slog.Any("error", err))
		if attempt < maxRetries {
			select {
			case <-time.After(300 * time.Millisecond):
			case <-ctx.Done():
				return ""
			}
		}
	}
	return ""
}

func fetchOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}
	resp, err := cfg.ScrapeClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return "", &httpStatusError{StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// probeCommonContactPaths requests well-known contact paths until one
// responds with something that looks like a contact page.
func probeCommonContactPaths(ctx context.Context, baseURL string) string {
	for _, path := range commonContactPaths {
		testURL := baseURL + path
		html := fetchPage(ctx, testURL, 0)
		if html == "" {
			continue
		}
		lower := strings.ToLower(html)
		if strings.Contains(lower, "<form") || strings.Contains(lower, "お問い合わせ") || strings.Contains(lower, "contact") {
			return testURL
		}
	}
	return ""
}

// ScrapeCompany enriches one candidate: fetch the top page, verify the site
// belongs to the company, then hunt for a contact URL and phone number.
func ScrapeCompany(ctx context.Context, companyName, rawURL string) EnrichedRecord {
	baseURL := NormalizeToTopPage(rawURL)
	record := EnrichedRecord{
		CompanyName: companyName,
		BaseURL:     baseURL,
		Domain:      ExtractDomain(baseURL),
	}

	topHTML := fetchPage(ctx, baseURL, 1)
	if topHTML == "" {
		metrics.ScrapeErrors.Add(1)
		slog.Warn("top page failed", slog.String("company", companyName), slog.String("url", baseURL))
		record.Error = ScrapeTopPageFailed
		return record
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(topHTML))
	if err != nil {
		metrics.ScrapeErrors.Add(1)
		record.Error = ScrapeTopPageFailed
		return record
	}

	if !CheckCompanyMatch(companyName, doc) {
		metrics.ScrapeErrors.Add(1)
		slog.Warn("company mismatch", slog.String("company", companyName), slog.String("url", baseURL))
		record.Error = ScrapeCompanyMismatch
		return record
	}

	record.ContactURL = ExtractContactURL(doc, baseURL)
	record.Phone = ExtractPhone(topHTML)

	// The contact page often prints the number the landing page hides
	// behind an image.
	if record.ContactURL != "" && record.Phone == "" && !strings.Contains(record.ContactURL, "#") {
		if html := fetchPage(ctx, record.ContactURL, 1); html != "" {
			record.Phone = ExtractPhone(html)
		}
	}

	if record.ContactURL == "" {
		record.ContactURL = probeCommonContactPaths(ctx, baseURL)
	}

	if record.Phone == "" {
		for _, path := range []string{"company/", "about/"} {
			if html := fetchPage(ctx, baseURL+path, 1); html != "" {
				if record.Phone = ExtractPhone(html); record.Phone != "" {
					break
				}
			}
		}
	}

	if record.HasContact() {
		slog.Info("scrape done",
			slog.String("company", companyName),
			slog.Bool("contact", record.ContactURL != ""),
			slog.Bool("phone", record.Phone != ""))
	} else {
		slog.Warn("no contact found", slog.String("company", companyName), slog.String("url", baseURL))
	}
	return record
}

// ScrapeCompanies runs ScrapeCompany over all candidates under a bounded
// concurrency limit with a pacing delay between starts. Results keep input
// order and every candidate yields exactly one record.
func ScrapeCompanies(ctx context.Context, candidates []Candidate) []EnrichedRecord {
	records := make([]EnrichedRecord, len(candidates))
	sem := semaphore.NewWeighted(cfg.ScrapeConcurrent)
	limiter := rate.NewLimiter(rate.Every(cfg.ScrapeInterval), 1)

	var wg sync.WaitGroup
	for i, cand := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			records[i] = EnrichedRecord{
				CompanyName: cand.CompanyName,
				BaseURL:     NormalizeToTopPage(cand.URL),
				Domain:      cand.Domain,
				Error:       ScrapeTopPageFailed,
			}
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			sem.Release(1)
			records[i] = EnrichedRecord{
				CompanyName: cand.CompanyName,
				BaseURL:     NormalizeToTopPage(cand.URL),
				Domain:      cand.Domain,
				Error:       ScrapeTopPageFailed,
			}
			continue
		}
		wg.Add(1)
		go func(i int, cand Candidate) {
			defer wg.Done()
			defer sem.Release(1)
			records[i] = ScrapeCompany(ctx, cand.CompanyName, cand.URL)
		}(i, cand)
	}
	wg.Wait()

	logScrapeSummary(records)
	return records
}

func logScrapeSummary(records []EnrichedRecord) {
	var success, topFailed, mismatch, noContact int
	for _, r := range records {
		switch {
		case r.HasContact():
			success++
		case r.Error == ScrapeTopPageFailed:
			topFailed++
		case r.Error == ScrapeCompanyMismatch:
			mismatch++
		default:
			noContact++
		}
	}
	slog.Info("scrape summary",
		slog.Int("total", len(records)),
		slog.Int("success", success),
		slog.Int("top_page_failed", topFailed),
		slog.Int("company_mismatch", mismatch),
		slog.Int("no_contact", noContact))
}
