// Package collab holds the external collaborator clients: the Google Apps
// Script webhook that owns the shared spreadsheet and the Slack notifier.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ai-shine/scraping-engine/internal/engine"
)

// GASClient talks to the Apps Script webhook. The webhook is slow when it
// builds a new spreadsheet, hence the generous default timeout.
type GASClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewGASClient builds a client for the given webhook URL.
func NewGASClient(webhookURL string) *GASClient {
	return &GASClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 300 * time.Second},
	}
}

type savedCompany struct {
	CompanyName string `json:"company_name"`
	BaseURL     string `json:"base_url"`
	ContactURL  string `json:"contact_url"`
	Phone       string `json:"phone"`
	Domain      string `json:"domain"`
}

// GetExistingDomains fetches the domains already present in the sheet.
func (c *GASClient) GetExistingDomains(ctx context.Context) ([]string, error) {
	var resp struct {
		Domains []string `json:"domains"`
	}
	if err := c.post(ctx, map[string]any{"action": "get_domains"}, &resp); err != nil {
		return nil, fmt.Errorf("get existing domains: %w", err)
	}
	slog.Info("existing domains fetched", slog.Int("count", len(resp.Domains)))
	return resp.Domains, nil
}

// SaveResults appends the records to the sheet and returns the spreadsheet
// URL the webhook reports back.
func (c *GASClient) SaveResults(ctx context.Context, records []engine.EnrichedRecord, keyword string) (string, error) {
	companies := make([]savedCompany, len(records))
	for i, r := range records {
		companies[i] = savedCompany{
			CompanyName: r.CompanyName,
			BaseURL:     r.BaseURL,
			ContactURL:  r.ContactURL,
			Phone:       r.Phone,
			Domain:      r.Domain,
		}
	}

	var resp struct {
		SpreadsheetURL string `json:"spreadsheet_url"`
	}
	payload := map[string]any{
		"action":         "save_results",
		"search_keyword": keyword,
		"companies":      companies,
	}
	if err := c.post(ctx, payload, &resp); err != nil {
		engine.IncrSinkErrors()
		return "", fmt.Errorf("save results: %w", err)
	}
	engine.IncrSinkSaves()
	slog.Info("results saved", slog.Int("count", len(records)), slog.String("spreadsheet_url", resp.SpreadsheetURL))
	return resp.SpreadsheetURL, nil
}

func (c *GASClient) post(ctx context.Context, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return c.httpClient.Do(req)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("gas webhook: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
