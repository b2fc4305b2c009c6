package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// DomainSource supplies domains already present in the shared sheet so a run
// never re-delivers a known company.
type DomainSource interface {
	GetExistingDomains(ctx context.Context) ([]string, error)
}

// ResultSink persists the final records and returns a viewable artifact URL.
type ResultSink interface {
	SaveResults(ctx context.Context, records []EnrichedRecord, keyword string) (string, error)
}

// ProgressReporter receives lifecycle updates during a run. Implementations
// must tolerate being called from the run's goroutine.
type ProgressReporter interface {
	OnStatus(status string, progress int, message string)
	OnFinal(records []EnrichedRecord, spreadsheetURL string)
	OnError(message string)
}

// NopReporter discards all progress updates.
type NopReporter struct{}

func (NopReporter) OnStatus(string, int, string)     {}
func (NopReporter) OnFinal([]EnrichedRecord, string) {}
func (NopReporter) OnError(string)                   {}

// Run statuses, in lifecycle order.
const (
	StatusPending   = "pending"
	StatusSearching = "searching"
	StatusScraping  = "scraping"
	StatusSaving    = "saving"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// scrapeBuffer over-books the search stage to absorb scrape-stage attrition.
const scrapeBuffer = 1.15

// giveUpThreshold lets a run settle for a near-complete result when new
// companies dry up.
const giveUpThreshold = 0.8

// SearchResult is the outcome of one full pipeline run.
type SearchResult struct {
	Records        []EnrichedRecord
	SpreadsheetURL string
	SearchCount    int
	ScrapeCount    int
	Message        string
}

// RunSearch executes the full pipeline: pre-load known domains, loop
// search+cleanse rounds until the buffered target is met, scrape, post-filter,
// and save. Sink failure degrades to an empty spreadsheet URL; the records are
// still returned.
func RunSearch(ctx context.Context, keyword string, targetCount int, initialQueries []string, domains DomainSource, sink ResultSink, reporter ProgressReporter) (*SearchResult, error) {
	if reporter == nil {
		reporter = NopReporter{}
	}

	reporter.OnStatus(StatusSearching, 5, "既存ドメインを取得中...")
	existing, err := domains.GetExistingDomains(ctx)
	if err != nil {
		slog.Warn("existing domains unavailable", slog.Any("error", err))
		existing = nil
	}
	slog.Info("existing domains", slog.Int("count", len(existing)))

	reporter.OnStatus(StatusSearching, 10, "企業を検索中...")
	candidates, err := searchWithRetry(ctx, keyword, targetCount, initialQueries, existing)
	if err != nil {
		return nil, err
	}
	searchCount := len(candidates)

	if searchCount == 0 {
		result := &SearchResult{
			Message: "検索結果が0件でした。キーワードを変更してお試しください。",
		}
		reporter.OnFinal(nil, "")
		return result, nil
	}

	reporter.OnStatus(StatusScraping, 50, "企業サイトから連絡先を収集中...")
	scraped := ScrapeCompanies(ctx, candidates)
	scrapeCount := len(scraped)

	var successful []EnrichedRecord
	for _, r := range scraped {
		if r.Error == ScrapeOK {
			successful = append(successful, r)
		}
	}
	sort.SliceStable(successful, func(i, j int) bool {
		return successful[i].HasContact() && !successful[j].HasContact()
	})
	if len(successful) > targetCount {
		successful = successful[:targetCount]
	}

	// The scrape stage can surface names the pre-scrape cleanse never saw;
	// run the deterministic gate once more.
	var final []EnrichedRecord
	for _, r := range successful {
		r.CompanyName = NormalizeCompanyName(r.CompanyName)
		if IsInvalidCompanyName(r.CompanyName) {
			slog.Info("post-scrape rejected", slog.String("company", r.CompanyName))
			continue
		}
		final = append(final, r)
	}

	reporter.OnStatus(StatusSaving, 90, "スプレッドシートに保存中...")
	spreadsheetURL := ""
	if len(final) > 0 && sink != nil {
		url, err := sink.SaveResults(ctx, final, keyword)
		if err != nil {
			slog.Error("sink save failed", slog.Any("error", err))
		} else {
			spreadsheetURL = url
		}
	}

	contactCount := 0
	for _, r := range final {
		if r.HasContact() {
			contactCount++
		}
	}
	message := buildResultMessage(len(final), contactCount, spreadsheetURL)

	result := &SearchResult{
		Records:        final,
		SpreadsheetURL: spreadsheetURL,
		SearchCount:    searchCount,
		ScrapeCount:    scrapeCount,
		Message:        message,
	}
	reporter.OnFinal(final, spreadsheetURL)
	return result, nil
}

func buildResultMessage(count, contactCount int, spreadsheetURL string) string {
	msg := fmt.Sprintf("検索完了: %d件の企業情報を取得しました（連絡先あり: %d件）", count, contactCount)
	if spreadsheetURL != "" {
		msg += "\nスプレッドシート: " + spreadsheetURL
	}
	return msg
}

// maxRetryRounds caps retry rounds by target size. Small targets get 3
// rounds, large ones up to 5.
func maxRetryRounds(targetCount int) int {
	r := targetCount / 50
	if r < 3 {
		r = 3
	}
	if r > 5 {
		r = 5
	}
	return r
}

// retryBatchSize shrinks the per-round query draw as rounds progress.
func retryBatchSize(round int) int {
	size := 20 - 2*round
	if size < 8 {
		size = 8
	}
	return size
}

// searchWithRetry loops search and cleanse rounds until the buffered target
// is met or the rounds are exhausted. Dedup runs on both the domain and the
// normalized-name axis.
func searchWithRetry(ctx context.Context, keyword string, targetCount int, initialQueries []string, existingDomains []string) ([]Candidate, error) {
	bufferedTarget := int(math.Ceil(float64(targetCount) * scrapeBuffer))
	maxRetries := maxRetryRounds(targetCount)
	slog.Info("search plan",
		slog.Int("target", targetCount),
		slog.Int("buffered_target", bufferedTarget),
		slog.Int("max_retries", maxRetries))

	usedDomains := make(map[string]bool, len(existingDomains))
	for _, d := range existingDomains {
		usedDomains[d] = true
	}
	usedNames := make(map[string]bool)
	usedQueries := make(map[string]bool)

	pool := NewQueryPool(keyword)
	var accumulated []Candidate

	for round := 0; round <= maxRetries; round++ {
		shortage := bufferedTarget - len(accumulated)

		var queries []string
		searchTarget := bufferedTarget
		maxPages := 2
		if round == 0 {
			queries = initialQueries
			if len(queries) == 0 {
				queries = InitialQueries(keyword)
			}
		} else {
			queries = pool.NextBatch(retryBatchSize(round), usedQueries)
			if len(queries) == 0 {
				slog.Info("query pool exhausted", slog.Int("round", round))
				break
			}
			searchTarget = shortage * 2
			maxPages = 1
		}
		for _, q := range queries {
			usedQueries[q] = true
		}
		slog.Info("search round",
			slog.Int("round", round),
			slog.Int("queries", len(queries)),
			slog.Int("shortage", shortage))

		candidates, err := SearchCompanies(ctx, queries, searchTarget, maxPages, usedDomains)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			if round == 0 {
				return nil, nil
			}
			slog.Info("no further search results", slog.Int("round", round))
			break
		}

		cleansed := CleanseCompanies(ctx, candidates, keyword, existingDomains)

		newCount := 0
		for _, c := range cleansed {
			if c.Domain != "" && usedDomains[c.Domain] {
				continue
			}
			if c.CompanyName != "" && usedNames[c.CompanyName] {
				continue
			}
			accumulated = append(accumulated, c)
			if c.Domain != "" {
				usedDomains[c.Domain] = true
			}
			if c.CompanyName != "" {
				usedNames[c.CompanyName] = true
			}
			newCount++
		}
		slog.Info("round merged",
			slog.Int("round", round),
			slog.Int("new", newCount),
			slog.Int("accumulated", len(accumulated)),
			slog.Int("buffered_target", bufferedTarget))

		if len(accumulated) >= bufferedTarget {
			break
		}
		if round == maxRetries {
			break
		}
		if newCount == 0 {
			break
		}
		if float64(len(accumulated)) >= float64(bufferedTarget)*giveUpThreshold && newCount < 3 {
			slog.Info("close enough to target, stopping retries")
			break
		}
	}

	if len(accumulated) > bufferedTarget {
		accumulated = accumulated[:bufferedTarget]
	}
	return accumulated, nil
}
