package server

import "github.com/ai-shine/scraping-engine/internal/engine"

type companyInput struct {
	CompanyName string `json:"company_name"`
	URL         string `json:"url"`
}

type scrapeRequest struct {
	Companies []companyInput `json:"companies"`
}

type scrapeResponse struct {
	Status       string                  `json:"status"`
	Results      []engine.EnrichedRecord `json:"results"`
	Total        int                     `json:"total"`
	Scraped      int                     `json:"scraped"`
	SuccessCount int                     `json:"success_count"`
}

type searchRequest struct {
	SearchKeyword  string   `json:"search_keyword"`
	TargetCount    int      `json:"target_count"`
	Queries        []string `json:"queries,omitempty"`
	SlackChannelID string   `json:"slack_channel_id,omitempty"`
	SlackThreadTS  string   `json:"slack_thread_ts,omitempty"`
}

type searchSyncResponse struct {
	Status         string                  `json:"status"`
	SearchKeyword  string                  `json:"search_keyword"`
	TargetCount    int                     `json:"target_count"`
	ResultCount    int                     `json:"result_count"`
	SearchCount    int                     `json:"search_count"`
	ScrapeCount    int                     `json:"scrape_count"`
	SuccessCount   int                     `json:"success_count"`
	SpreadsheetURL string                  `json:"spreadsheet_url"`
	Results        []engine.EnrichedRecord `json:"results"`
	Message        string                  `json:"message"`
}

type searchJobResponse struct {
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

type jobStatusResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Progress       int    `json:"progress"`
	Message        string `json:"message"`
	Error          string `json:"error,omitempty"`
	ResultCount    int    `json:"result_count"`
	SpreadsheetURL string `json:"spreadsheet_url,omitempty"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Message   string            `json:"message"`
	EnvStatus map[string]string `json:"env_status"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}
