package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ai-shine/scraping-engine/internal/engine"
	"github.com/ai-shine/scraping-engine/internal/registry"
)

func newTestServer(t *testing.T, mutate func(*Deps)) *httptest.Server {
	t.Helper()
	engine.Init(engine.Config{ScrapeInterval: time.Millisecond})

	deps := &Deps{
		Registry:      registry.New(time.Hour),
		SerperAPIKey:  "test-key",
		GASWebhookURL: "https://script.google.com/macros/s/test/exec",
		NewDomainSource: func() engine.DomainSource {
			return staticDomainSource{}
		},
		NewSink: func() engine.ResultSink {
			return discardSink{}
		},
		NewReporter: func(jobID, channel, threadTS, keyword string) engine.ProgressReporter {
			return engine.NopReporter{}
		},
	}
	if mutate != nil {
		mutate(deps)
	}

	srv := httptest.NewServer(New(deps))
	t.Cleanup(srv.Close)
	return srv
}

type staticDomainSource struct{}

func (staticDomainSource) GetExistingDomains(context.Context) ([]string, error) {
	return nil, nil
}

type discardSink struct{}

func (discardSink) SaveResults(context.Context, []engine.EnrichedRecord, string) (string, error) {
	return "https://sheets.example.com/test", nil
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	t.Run("all set", func(t *testing.T) {
		srv := newTestServer(t, func(d *Deps) { d.SlackBotToken = "xoxb-test" })
		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var body healthResponse
		decodeBody(t, resp, &body)
		if body.Status != "ok" {
			t.Errorf("status = %q, want ok", body.Status)
		}
		if body.EnvStatus["SLACK_BOT_TOKEN"] != "set" {
			t.Errorf("env_status = %v", body.EnvStatus)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		srv := newTestServer(t, func(d *Deps) { d.GASWebhookURL = "" })
		resp, err := http.Get(srv.URL + "/health")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var body healthResponse
		decodeBody(t, resp, &body)
		if body.Status != "warning" {
			t.Errorf("status = %q, want warning", body.Status)
		}
		if !strings.Contains(body.Message, "GAS_WEBHOOK_URL") {
			t.Errorf("message = %q", body.Message)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "search_requests") {
		t.Errorf("metrics output missing counters: %q", buf.String())
	}
}

func TestScrapeValidation(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("bad body", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/scrape", "application/json", strings.NewReader("{"))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("empty companies", func(t *testing.T) {
		resp := postJSON(t, srv.URL+"/scrape", scrapeRequest{})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d", resp.StatusCode)
		}
		var body errorResponse
		decodeBody(t, resp, &body)
		if body.Detail != "companies配列が必要です" {
			t.Errorf("detail = %q", body.Detail)
		}
	})
}

func TestScrapeDropsExcludedDomains(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>株式会社テスト</title></head><body>
			<h1>株式会社テスト</h1>
			<a href="/contact/">お問い合わせ</a>
			<p>TEL: 03-1234-5678</p>
		</body></html>`)
	}))
	defer site.Close()

	srv := newTestServer(t, nil)
	resp := postJSON(t, srv.URL+"/scrape", scrapeRequest{Companies: []companyInput{
		{CompanyName: "株式会社テスト", URL: site.URL + "/"},
		{CompanyName: "Wantedly掲載企業", URL: "https://www.wantedly.com/companies/foo"},
	}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body scrapeResponse
	decodeBody(t, resp, &body)
	if body.Total != 2 {
		t.Errorf("total = %d, want 2", body.Total)
	}
	if body.Scraped != 1 {
		t.Fatalf("scraped = %d, want 1 (excluded domain not dropped)", body.Scraped)
	}
	rec := body.Results[0]
	if rec.CompanyName != "株式会社テスト" {
		t.Errorf("company_name = %q", rec.CompanyName)
	}
	if rec.Phone != "03-1234-5678" {
		t.Errorf("phone = %q", rec.Phone)
	}
	if body.SuccessCount != 1 {
		t.Errorf("success_count = %d", body.SuccessCount)
	}
}

func TestSearchValidation(t *testing.T) {
	t.Run("empty keyword", func(t *testing.T) {
		srv := newTestServer(t, nil)
		resp := postJSON(t, srv.URL+"/search", searchRequest{SearchKeyword: "  "})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d", resp.StatusCode)
		}
		var body errorResponse
		decodeBody(t, resp, &body)
		if body.Detail != "search_keyword が必要です" {
			t.Errorf("detail = %q", body.Detail)
		}
	})

	t.Run("target over limit", func(t *testing.T) {
		srv := newTestServer(t, nil)
		resp := postJSON(t, srv.URL+"/search", searchRequest{
			SearchKeyword: "東京 IT企業",
			TargetCount:   engine.Cfg.MaxTargetCount + 1,
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("missing serper key", func(t *testing.T) {
		srv := newTestServer(t, func(d *Deps) { d.SerperAPIKey = "" })
		resp := postJSON(t, srv.URL+"/search", searchRequest{SearchKeyword: "東京 IT企業"})
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})

	t.Run("missing gas webhook", func(t *testing.T) {
		srv := newTestServer(t, func(d *Deps) { d.GASWebhookURL = "" })
		resp := postJSON(t, srv.URL+"/search_sync", searchRequest{SearchKeyword: "東京 IT企業"})
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("status = %d", resp.StatusCode)
		}
	})
}

func TestJobEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("unknown job is 404", func(t *testing.T) {
		for _, path := range []string{"/jobs/nope", "/jobs/nope/result"} {
			resp, err := http.Get(srv.URL + path)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("GET %s status = %d", path, resp.StatusCode)
			}
		}

		req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/jobs/nope", nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("DELETE status = %d", resp.StatusCode)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/jobs")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()

		var body struct {
			Jobs  []jobStatusResponse `json:"jobs"`
			Total int                 `json:"total"`
		}
		decodeBody(t, resp, &body)
		if body.Total != 0 || len(body.Jobs) != 0 {
			t.Errorf("jobs = %+v", body)
		}
	})
}

func TestJobLifecycleThroughRegistry(t *testing.T) {
	reg := registry.New(time.Hour)
	srv := newTestServer(t, func(d *Deps) { d.Registry = reg })

	job := reg.Create("東京 IT企業", 30, []string{"東京 IT企業 株式会社"})
	reg.UpdateStatus(job.ID, engine.StatusScraping, 50, "スクレイピング中")

	resp, err := http.Get(srv.URL + "/jobs/" + job.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body jobStatusResponse
	decodeBody(t, resp, &body)
	if body.Status != engine.StatusScraping || body.Progress != 50 {
		t.Errorf("status = %q, progress = %d", body.Status, body.Progress)
	}

	reg.Complete(job.ID, []engine.EnrichedRecord{{CompanyName: "株式会社テスト"}},
		"https://sheets.example.com/1", "done")

	resp2, err := http.Get(srv.URL + "/jobs/" + job.ID + "/result")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()

	var full registry.Job
	decodeBody(t, resp2, &full)
	if full.Status != engine.StatusCompleted || len(full.Results) != 1 {
		t.Errorf("result job = %+v", full)
	}
	if full.SpreadsheetURL != "https://sheets.example.com/1" {
		t.Errorf("spreadsheet_url = %q", full.SpreadsheetURL)
	}
}

func TestMultiReporterFanOut(t *testing.T) {
	var statuses []string
	rec := reporterFunc{onStatus: func(status string, progress int, message string) {
		statuses = append(statuses, status)
	}}

	reporter := NewMultiReporter(nil, rec)
	reporter.OnStatus(engine.StatusSearching, 10, "searching")
	reporter.OnStatus(engine.StatusScraping, 50, "scraping")
	reporter.OnFinal(nil, "")
	reporter.OnError("boom")

	if len(statuses) != 2 || statuses[0] != engine.StatusSearching {
		t.Errorf("statuses = %v", statuses)
	}

	// All nils collapse to a no-op reporter, never nil.
	if NewMultiReporter(nil, nil) == nil {
		t.Error("NewMultiReporter returned nil")
	}
}

func TestRegistryReporter(t *testing.T) {
	reg := registry.New(time.Hour)
	job := reg.Create("k", 10, nil)

	reporter := NewRegistryReporter(reg, job.ID)
	reporter.OnStatus(engine.StatusSearching, 10, "検索中")

	got := reg.Get(job.ID)
	if got.Status != engine.StatusSearching || got.Progress != 10 {
		t.Errorf("job = %+v", got)
	}
}

type reporterFunc struct {
	onStatus func(status string, progress int, message string)
}

func (r reporterFunc) OnStatus(status string, progress int, message string) {
	if r.onStatus != nil {
		r.onStatus(status, progress, message)
	}
}

func (r reporterFunc) OnFinal([]engine.EnrichedRecord, string) {}

func (r reporterFunc) OnError(string) {}
