package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// serperAPIURL is a var so tests can point the client at a local server.
var serperAPIURL = "https://google.serper.dev/search"

type serperResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type serperResponse struct {
	Organic []serperResult `json:"organic"`
}

// searchPage runs one Serper query page and returns the organic results.
func searchPage(ctx context.Context, query string, num, start int) ([]serperResult, error) {
	if num > 100 {
		num = 100
	}
	payload := map[string]any{
		"q":   query,
		"num": num,
		"gl":  "jp",
		"hl":  "ja",
	}
	if start > 0 {
		payload["start"] = start
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	metrics.SearchRequests.Add(1)
	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperAPIURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-API-KEY", cfg.SerperAPIKey)
		req.Header.Set("Content-Type", "application/json")
		return cfg.SearchClient.Do(req)
	})
	if err != nil {
		metrics.SearchErrors.Add(1)
		return nil, fmt.Errorf("serper search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.SearchErrors.Add(1)
		return nil, fmt.Errorf("serper search: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.SearchErrors.Add(1)
		return nil, fmt.Errorf("serper search: read body: %w", err)
	}
	var sr serperResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		metrics.SearchErrors.Add(1)
		return nil, fmt.Errorf("serper search: decode: %w", err)
	}
	return sr.Organic, nil
}

// SearchCompanies runs the queries in order, filters and deduplicates the
// results, and stops once targetCount candidates are collected. maxPages
// bounds paging per query; later pages of a query that stopped yielding are
// almost always empty too. Domains in existingDomains are treated as already
// found. A failed query is logged and skipped; the aggregate never fails
// because one query did.
func SearchCompanies(ctx context.Context, queries []string, targetCount, maxPages int, existingDomains map[string]bool) ([]Candidate, error) {
	if maxPages <= 0 {
		maxPages = 1
	}
	foundDomains := make(map[string]bool, len(existingDomains))
	for d := range existingDomains {
		foundDomains[d] = true
	}

	var companies []Candidate
	for _, query := range queries {
		if len(companies) >= targetCount {
			break
		}
		if ctx.Err() != nil {
			return companies, ctx.Err()
		}
		slog.Info("search query", slog.String("query", query))

		for page := 0; page < maxPages; page++ {
			if len(companies) >= targetCount {
				break
			}
			results, err := searchPage(ctx, query, cfg.SerperResultsPerQuery, page*100)
			if err != nil {
				if ctx.Err() != nil {
					return companies, ctx.Err()
				}
				slog.Warn("search failed",
					slog.String("query", query),
					slog.Int("page", page),
					slog.Any("error", err))
				break
			}
			if len(results) == 0 {
				break
			}

			added := 0
			for _, result := range results {
				if len(companies) >= targetCount {
					break
				}
				if result.Link == "" {
					continue
				}
				domain := ExtractDomain(result.Link)
				if IsExcludedDomain(domain) {
					continue
				}
				if IsExcludedTitle(result.Title) {
					continue
				}
				if foundDomains[domain] {
					continue
				}
				// .co.jp domains skip the likelihood check, the TLD
				// itself implies a registered company.
				if !strings.HasSuffix(domain, ".co.jp") && !IsLikelyCompanyTitle(result.Title) {
					continue
				}
				foundDomains[domain] = true
				companies = append(companies, Candidate{
					CompanyName: result.Title,
					URL:         result.Link,
					Domain:      domain,
					Snippet:     result.Snippet,
				})
				added++
			}

			slog.Debug("search page done",
				slog.String("query", query),
				slog.Int("page", page+1),
				slog.Int("added", added),
				slog.Int("total", len(companies)))

			if added == 0 {
				break
			}
		}
	}

	slog.Info("search done",
		slog.Int("companies", len(companies)),
		slog.Int("queries", len(queries)))
	return companies, nil
}
