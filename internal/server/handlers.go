package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ai-shine/scraping-engine/internal/engine"
)

type handlers struct {
	deps *Deps
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	envStatus := map[string]string{
		"SERPER_API_KEY":  setOrMissing(h.deps.SerperAPIKey),
		"GAS_WEBHOOK_URL": setOrMissing(h.deps.GASWebhookURL),
		"SLACK_BOT_TOKEN": setOrMissing(h.deps.SlackBotToken),
	}
	var missing []string
	for _, key := range []string{"SERPER_API_KEY", "GAS_WEBHOOK_URL"} {
		if envStatus[key] == "missing" {
			missing = append(missing, key)
		}
	}

	resp := healthResponse{Status: "ok", Message: "scraping engine is running", EnvStatus: envStatus}
	if len(missing) > 0 {
		resp.Status = "warning"
		resp.Message = "missing env: " + strings.Join(missing, ", ")
	}
	writeJSON(w, http.StatusOK, resp)
}

func setOrMissing(v string) string {
	if v == "" {
		return "missing"
	}
	return "set"
}

func (h *handlers) metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, engine.FormatMetrics())
}

func (h *handlers) scrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "不正なリクエストボディです")
		return
	}
	if len(req.Companies) == 0 {
		writeError(w, http.StatusBadRequest, "companies配列が必要です")
		return
	}

	// Known non-company domains are dropped before any fetch happens.
	var candidates []engine.Candidate
	for _, c := range req.Companies {
		domain := engine.ExtractDomain(c.URL)
		if engine.IsExcludedDomain(domain) {
			slog.Info("excluded domain skipped",
				slog.String("company", c.CompanyName),
				slog.String("domain", domain))
			continue
		}
		candidates = append(candidates, engine.Candidate{
			CompanyName: c.CompanyName,
			URL:         c.URL,
			Domain:      domain,
		})
	}

	results := engine.ScrapeCompanies(r.Context(), candidates)
	successCount := 0
	for _, rec := range results {
		if rec.HasContact() {
			successCount++
		}
	}
	if results == nil {
		results = []engine.EnrichedRecord{}
	}

	writeJSON(w, http.StatusOK, scrapeResponse{
		Status:       "success",
		Results:      results,
		Total:        len(req.Companies),
		Scraped:      len(results),
		SuccessCount: successCount,
	})
}

// decodeSearchRequest validates the shared request shape of both search
// endpoints.
func (h *handlers) decodeSearchRequest(w http.ResponseWriter, r *http.Request) (*searchRequest, bool) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "不正なリクエストボディです")
		return nil, false
	}
	if strings.TrimSpace(req.SearchKeyword) == "" {
		writeError(w, http.StatusBadRequest, "search_keyword が必要です")
		return nil, false
	}
	if req.TargetCount <= 0 {
		req.TargetCount = 30
	}
	if limit := engine.Cfg.MaxTargetCount; req.TargetCount > limit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("target_count は %d 以下にしてください", limit))
		return nil, false
	}
	if h.deps.SerperAPIKey == "" {
		writeError(w, http.StatusInternalServerError, "SERPER_API_KEY が未設定です")
		return nil, false
	}
	if h.deps.GASWebhookURL == "" {
		writeError(w, http.StatusInternalServerError, "GAS_WEBHOOK_URL が未設定です")
		return nil, false
	}
	return &req, true
}

func (h *handlers) searchSync(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSearchRequest(w, r)
	if !ok {
		return
	}
	slog.Info("sync search start",
		slog.String("keyword", req.SearchKeyword),
		slog.Int("target", req.TargetCount))

	result, err := engine.RunSearch(r.Context(), req.SearchKeyword, req.TargetCount, req.Queries,
		h.deps.NewDomainSource(), h.deps.NewSink(), nil)
	if err != nil {
		slog.Error("sync search failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	records := result.Records
	if records == nil {
		records = []engine.EnrichedRecord{}
	}
	writeJSON(w, http.StatusOK, searchSyncResponse{
		Status:         "success",
		SearchKeyword:  req.SearchKeyword,
		TargetCount:    req.TargetCount,
		ResultCount:    len(result.Records),
		SearchCount:    result.SearchCount,
		ScrapeCount:    result.ScrapeCount,
		SuccessCount:   len(result.Records),
		SpreadsheetURL: result.SpreadsheetURL,
		Results:        records,
		Message:        result.Message,
	})
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeSearchRequest(w, r)
	if !ok {
		return
	}

	queries := req.Queries
	if len(queries) == 0 {
		queries = engine.InitialQueries(req.SearchKeyword)
	}

	job := h.deps.Registry.Create(req.SearchKeyword, req.TargetCount, queries)
	slog.Info("search job accepted",
		slog.String("job", job.ID),
		slog.String("keyword", req.SearchKeyword),
		slog.Int("target", req.TargetCount))

	reporter := h.deps.NewReporter(job.ID, req.SlackChannelID, req.SlackThreadTS, req.SearchKeyword)
	go h.runJob(job.ID, req.SearchKeyword, req.TargetCount, queries, reporter)

	writeJSON(w, http.StatusOK, searchJobResponse{
		Status:  "accepted",
		JobID:   job.ID,
		Message: fmt.Sprintf("検索ジョブを開始しました（%dクエリ）", len(queries)),
	})
}

// runJob drives one asynchronous search to completion. The job outlives the
// request, so it runs on a background context.
func (h *handlers) runJob(jobID, keyword string, targetCount int, queries []string, reporter engine.ProgressReporter) {
	ctx := context.Background()

	result, err := engine.RunSearch(ctx, keyword, targetCount, queries,
		h.deps.NewDomainSource(), h.deps.NewSink(), reporter)
	if err != nil {
		slog.Error("search job failed", slog.String("job", jobID), slog.Any("error", err))
		h.deps.Registry.Fail(jobID, err.Error())
		reporter.OnError(err.Error())
		return
	}
	h.deps.Registry.Complete(jobID, result.Records, result.SpreadsheetURL, result.Message)
}

func (h *handlers) listJobs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	jobs := h.deps.Registry.List(limit)
	statuses := make([]jobStatusResponse, 0, len(jobs))
	for _, job := range jobs {
		statuses = append(statuses, jobStatusResponse{
			ID:             job.ID,
			Status:         job.Status,
			Progress:       job.Progress,
			Message:        job.Message,
			Error:          job.Error,
			ResultCount:    job.ResultCount,
			SpreadsheetURL: job.SpreadsheetURL,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": statuses, "total": len(statuses)})
}

func (h *handlers) jobStatus(w http.ResponseWriter, r *http.Request) {
	job := h.deps.Registry.Get(chi.URLParam(r, "jobID"))
	if job == nil {
		writeError(w, http.StatusNotFound, "ジョブが見つかりません")
		return
	}
	writeJSON(w, http.StatusOK, jobStatusResponse{
		ID:             job.ID,
		Status:         job.Status,
		Progress:       job.Progress,
		Message:        job.Message,
		Error:          job.Error,
		ResultCount:    job.ResultCount,
		SpreadsheetURL: job.SpreadsheetURL,
	})
}

func (h *handlers) jobResult(w http.ResponseWriter, r *http.Request) {
	job := h.deps.Registry.Get(chi.URLParam(r, "jobID"))
	if job == nil {
		writeError(w, http.StatusNotFound, "ジョブが見つかりません")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (h *handlers) deleteJob(w http.ResponseWriter, r *http.Request) {
	if !h.deps.Registry.Delete(chi.URLParam(r, "jobID")) {
		writeError(w, http.StatusNotFound, "ジョブが見つかりません")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
